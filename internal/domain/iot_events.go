package domain

import (
	"encoding/json"
	"time"
)

// SlotUpdateDTO là body của POST /api/iot/update-slot (ESP8266 gửi trực tiếp).
// IsOccupied là con trỏ để phân biệt false với thiếu trường.
type SlotUpdateDTO struct {
	SlotID     int   `json:"slot_id" binding:"required"`
	IsOccupied *bool `json:"is_occupied" binding:"required"`
}

// GenericIoTEvent dùng để parse bước đầu message từ SQS, lấy message_type và các trường chung.
type GenericIoTEvent struct {
	DeviceID          string          `json:"device_id"`
	MessageType       string          `json:"message_type"`
	Timestamp         string          `json:"timestamp"`                     // ISO 8601 UTC string từ thiết bị
	ReceivedMqttTopic string          `json:"received_mqtt_topic,omitempty"` // Do IoT Rule thêm vào
	RawPayload        json.RawMessage `json:"-"`
}

// DeviceSlotStatusEvent là sự kiện cảm biến chỗ đỗ đến qua SQS,
// cùng ngữ nghĩa với SlotUpdateDTO của đường HTTP.
type DeviceSlotStatusEvent struct {
	GenericIoTEvent
	SlotID     int  `json:"slot_id"`
	IsOccupied bool `json:"is_occupied"`
}

// GateOpenCommandPayload là lệnh publish xuống thiết bị qua IoT Data Plane.
type GateOpenCommandPayload struct {
	Command      string `json:"command"` // "open"
	GateID       string `json:"gate_id"`
	OpenDuration int    `json:"open_duration"`
	RequestID    string `json:"request_id,omitempty"`
}

// DeviceEventLog lưu payload gốc của mọi sự kiện thiết bị vào DB để truy vết.
type DeviceEventLog struct {
	ID              int64           `json:"id"`
	ReceivedAt      time.Time       `json:"received_at"`
	DeviceID        string          `json:"device_id"`
	MqttTopic       string          `json:"mqtt_topic"`
	MessageType     string          `json:"message_type"`
	Payload         json.RawMessage `json:"payload"`
	ProcessedStatus string          `json:"processed_status"` // "pending", "processed", "error"
	ProcessingNotes string          `json:"processing_notes,omitempty"`
}
