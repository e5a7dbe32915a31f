package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupSlotRouter(slotRepo *MockSlotRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	slotService := service.NewSlotService(slotRepo, nil)
	h := NewSlotHandler(slotService)

	r := gin.New()
	r.GET("/api/slots", h.GetAllSlots)
	r.GET("/api/slots/status", h.GetAvailability)
	r.POST("/api/slots/add", h.AddSlot)
	return r
}

func TestGetAllSlotsHandler(t *testing.T) {
	slotRepo := new(MockSlotRepo)
	r := setupSlotRouter(slotRepo)

	slotRepo.On("FindAll", mock.Anything).Return([]domain.Slot{
		{ID: 1, Status: domain.StatusAvailable},
		{ID: 2, Status: domain.StatusBooked},
		{ID: 3, Status: domain.StatusOccupied},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"slots": [
		{"id": 1, "status": "available"},
		{"id": 2, "status": "booked"},
		{"id": 3, "status": "occupied"}
	]}`, w.Body.String())
}

func TestGetAvailabilityHandler(t *testing.T) {
	slotRepo := new(MockSlotRepo)
	r := setupSlotRouter(slotRepo)

	slotRepo.On("CountAll", mock.Anything).Return(10, nil)
	slotRepo.On("CountByStatus", mock.Anything, domain.StatusAvailable).Return(7, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/slots/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total": 10, "available": 7, "occupied": 3}`, w.Body.String())
}

func TestAddSlotHandler(t *testing.T) {
	slotRepo := new(MockSlotRepo)
	r := setupSlotRouter(slotRepo)

	slotRepo.On("Create", mock.Anything, domain.StatusAvailable, "admin_creation").Return(&domain.Slot{
		ID: 11, Status: domain.StatusAvailable,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/slots/add", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message": "New slot added", "slot_id": 11}`, w.Body.String())
}
