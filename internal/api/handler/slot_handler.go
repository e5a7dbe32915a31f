package handler

import (
	"net/http"

	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	slotService *service.SlotService
}

func NewSlotHandler(ss *service.SlotService) *SlotHandler {
	return &SlotHandler{slotService: ss}
}

// GET /api/slots
func (h *SlotHandler) GetAllSlots(c *gin.Context) {
	slots, err := h.slotService.GetAllSlots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách slot", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GET /api/slots/status (public)
func (h *SlotHandler) GetAvailability(c *gin.Context) {
	summary, err := h.slotService.AvailabilitySummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tình trạng bãi xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// POST /api/slots/add (admin)
func (h *SlotHandler) AddSlot(c *gin.Context) {
	slot, err := h.slotService.AddSlot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm slot mới", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "New slot added", "slot_id": slot.ID})
}
