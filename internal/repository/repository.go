package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")
var ErrNoActiveBooking = errors.New("không tìm thấy booking đang mở cho thông tin cung cấp")
var ErrNoAvailableSlot = errors.New("không còn chỗ đỗ trống")
var ErrBookingClosed = errors.New("booking đã được đóng trước đó")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type SlotRepository interface {
	Create(ctx context.Context, status domain.SlotStatus, source string) (*domain.Slot, error)
	FindByID(ctx context.Context, id int) (*domain.Slot, error)
	FindAll(ctx context.Context) ([]domain.Slot, error)
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status domain.SlotStatus) (int, error)
	UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, lastEventTime *time.Time, source string) error
}

type BookingRepository interface {
	// AllocateAndCreate chọn chỗ trống có id nhỏ nhất, đánh dấu booked và tạo
	// booking mở trong cùng một transaction. Trả về ErrNoAvailableSlot khi hết
	// chỗ, ErrDuplicateEntry khi người dùng hoặc chỗ đỗ đã có booking mở.
	AllocateAndCreate(ctx context.Context, userID int, depositAmount float64) (*domain.Booking, error)
	FindByID(ctx context.Context, id int) (*domain.Booking, error)
	FindOpenByUser(ctx context.Context, userID int) (*domain.Booking, error)
	FindAllByUser(ctx context.Context, userID int) ([]domain.Booking, error)
	// Close ghi exit_time và phí, đồng thời trả chỗ đỗ về available trong cùng
	// một transaction. Trả về ErrBookingClosed nếu booking đã đóng.
	Close(ctx context.Context, bookingID int, exitTime time.Time, amount float64) (*domain.Booking, error)
}

type GateCommandRepository interface {
	Enqueue(ctx context.Context, gateID string, openDurationSeconds int) (*domain.GateCommand, error)
	// ConsumePending lấy và đánh dấu đã tiêu thụ lệnh chờ cũ nhất của cổng.
	// Trả về ErrNotFound nếu không có lệnh nào đang chờ.
	ConsumePending(ctx context.Context, gateID string) (*domain.GateCommand, error)
	CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type DeviceEventLogRepository interface {
	Create(ctx context.Context, event *domain.DeviceEventLog) error
}
