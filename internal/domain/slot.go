package domain

import "time"

type SlotStatus string

const (
	StatusAvailable SlotStatus = "available"
	StatusBooked    SlotStatus = "booked"   // Do hệ thống booking quản lý, cảm biến không được ghi đè
	StatusOccupied  SlotStatus = "occupied" // Do cảm biến báo có xe (không qua booking)
)

type Slot struct {
	ID                     int        `json:"id"`
	Status                 SlotStatus `json:"status"`
	LastStatusUpdateSource string     `json:"last_status_update_source,omitempty"`
	LastEventTimestamp     *time.Time `json:"last_event_timestamp,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// SlotView là dạng rút gọn trả về cho GET /api/slots
type SlotView struct {
	ID     int        `json:"id"`
	Status SlotStatus `json:"status"`
}

// AvailabilitySummary dùng cho màn hình hiển thị công cộng và WebSocket broadcast
type AvailabilitySummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}
