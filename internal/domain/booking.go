package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Định dạng thời gian trong response, khớp với frontend hiện có.
const TimeLayout = "2006-01-02 15:04:05"

type Booking struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	SlotID    int       `json:"slot_id"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  null.Time `json:"exit_time"` // NULL = phiên đang mở
	Amount    float64   `json:"amount"`    // Bắt đầu là tiền cọc, bị ghi đè bằng phí tính được khi ra
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen báo phiên còn đang mở (chưa có exit_time).
func (b *Booking) IsOpen() bool {
	return !b.ExitTime.Valid
}

// ActiveBookingDTO là response của GET /api/bookings/active.
type ActiveBookingDTO struct {
	BookingID     int     `json:"booking_id"`
	SlotID        int     `json:"slot_id"`
	EntryTime     string  `json:"entry_time"`
	DurationMins  float64 `json:"duration_mins"`
	EstimatedCost float64 `json:"estimated_cost"`
	Deposit       float64 `json:"deposit"`
}

// BookingHistoryItemDTO là một phần tử trong response của GET /api/bookings/history.
// exit_time và duration_mins chỉ xuất hiện khi phiên đã đóng.
type BookingHistoryItemDTO struct {
	BookingID    int      `json:"booking_id"`
	SlotID       int      `json:"slot_id"`
	EntryTime    string   `json:"entry_time"`
	Amount       float64  `json:"amount"`
	ExitTime     *string  `json:"exit_time,omitempty"`
	DurationMins *float64 `json:"duration_mins,omitempty"`
}
