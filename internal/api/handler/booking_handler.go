package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/DevBolt07/smart-parking/internal/api/middleware"
	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService *service.BookingService
	gateService    *service.GateService
}

func NewBookingHandler(bs *service.BookingService, gs *service.GateService) *BookingHandler {
	return &BookingHandler{bookingService: bs, gateService: gs}
}

func currentUserID(c *gin.Context) (int, bool) {
	val, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy thông tin người dùng"})
		return 0, false
	}
	userID, ok := val.(int)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thông tin người dùng không hợp lệ"})
		return 0, false
	}
	return userID, true
}

// POST /api/book
func (h *BookingHandler) BookSlot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	_, err := h.bookingService.BookSlot(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoAvailableSlot):
			c.JSON(http.StatusNotFound, gin.H{"message": "No available slots."})
		case errors.Is(err, repository.ErrDuplicateEntry):
			c.JSON(http.StatusConflict, gin.H{"message": "You already have an active booking!"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đặt chỗ", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot booked successfully!"})
}

// POST /api/entry-gate
func (h *BookingHandler) OpenEntryGate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	_, err := h.bookingService.ActiveBooking(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBooking) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No active booking found!"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể kiểm tra booking", "details": err.Error()})
		return
	}

	if err := h.gateService.RequestOpen(c.Request.Context(), domain.GateEntry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mở cổng vào", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry gate opened successfully!"})
}

// POST /api/exit-gate
func (h *BookingHandler) OpenExitGate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Exit(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBooking) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No active booking found!"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xử lý xe ra", "details": err.Error()})
		return
	}

	// Booking đã đóng và slot đã trả; lỗi lệnh cổng không làm hỏng giao dịch
	if err := h.gateService.RequestOpen(c.Request.Context(), domain.GateExit); err != nil {
		log.Printf("OpenExitGate: lỗi tạo lệnh mở cổng ra: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exit gate opened!", "fee": booking.Amount})
}

// GET /api/bookings/active
func (h *BookingHandler) GetActiveBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	active, err := h.bookingService.ActiveBooking(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveBooking) {
			c.JSON(http.StatusNotFound, gin.H{"active_booking": nil})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy booking hiện tại", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, active)
}

// GET /api/bookings/history
func (h *BookingHandler) GetBookingHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	history, err := h.bookingService.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy lịch sử booking", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": history})
}
