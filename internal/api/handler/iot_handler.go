package handler

import (
	"errors"
	"net/http"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
)

// IoTHandler phục vụ các endpoint mà thiết bị (ESP8266) gọi trực tiếp qua HTTP.
type IoTHandler struct {
	slotService *service.SlotService
	gateService *service.GateService
}

func NewIoTHandler(ss *service.SlotService, gs *service.GateService) *IoTHandler {
	return &IoTHandler{slotService: ss, gateService: gs}
}

// POST /api/iot/update-slot
func (h *IoTHandler) UpdateSlot(c *gin.Context) {
	var dto domain.SlotUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.slotService.ApplySensorUpdate(c.Request.Context(), dto.SlotID, *dto.IsOccupied, "sensor")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái slot", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GET /api/iot/gate-status?gate_id=entry|exit
func (h *IoTHandler) GetGateStatus(c *gin.Context) {
	gateID := c.Query("gate_id")
	if gateID != domain.GateEntry && gateID != domain.GateExit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gate_id phải là 'entry' hoặc 'exit'"})
		return
	}

	status, err := h.gateService.Poll(c.Request.Context(), gateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy trạng thái cổng", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
