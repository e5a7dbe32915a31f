package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	GateEntry = "entry"
	GateExit  = "exit"
)

// GateCommand là một lệnh mở cổng đang chờ thiết bị đến poll.
// Lệnh chỉ được tiêu thụ một lần; lệnh quá hạn sẽ bị job dọn dẹp xóa.
type GateCommand struct {
	ID                  int       `json:"id"`
	GateID              string    `json:"gate_id"` // "entry" hoặc "exit"
	ShouldOpen          bool      `json:"should_open"`
	OpenDurationSeconds int       `json:"open_duration_seconds"`
	RequestedAt         time.Time `json:"requested_at"`
	ConsumedAt          null.Time `json:"consumed_at"`
}

// GateStatusDTO là response của GET /api/iot/gate-status.
type GateStatusDTO struct {
	GateID       string `json:"gate_id"`
	ShouldOpen   bool   `json:"should_open"`
	OpenDuration int    `json:"open_duration"` // giây
}
