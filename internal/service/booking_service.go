package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
)

// BookingService là lõi cấp phát chỗ đỗ và tính phí.
type BookingService struct {
	bookingRepo   repository.BookingRepository
	depositAmount float64
	ratePerMinute float64
}

func NewBookingService(bookingRepo repository.BookingRepository, depositAmount, ratePerMinute float64) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		depositAmount: depositAmount,
		ratePerMinute: ratePerMinute,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeFee tính phí đỗ xe: số phút (làm tròn 2 chữ số) nhân đơn giá,
// kết quả làm tròn 2 chữ số. Thời gian âm tính là 0.
func ComputeFee(entryTime, exitTime time.Time, ratePerMinute float64) float64 {
	minutes := round2(exitTime.Sub(entryTime).Minutes())
	if minutes <= 0 {
		return 0
	}
	return round2(ratePerMinute * minutes)
}

// BookSlot cấp phát chỗ trống có id nhỏ nhất cho người dùng và mở booking với
// tiền cọc. Kiểm tra trước booking mở của người dùng cho thông báo lỗi rõ ràng;
// repository vẫn tự bảo đảm bất biến dưới request song song.
func (s *BookingService) BookSlot(ctx context.Context, userID int) (*domain.Booking, error) {
	existing, err := s.bookingRepo.FindOpenByUser(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNoActiveBooking) {
		return nil, fmt.Errorf("lỗi kiểm tra booking đang mở: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: người dùng %d đã có booking đang mở (ID: %d)", repository.ErrDuplicateEntry, userID, existing.ID)
	}

	booking, err := s.bookingRepo.AllocateAndCreate(ctx, userID, s.depositAmount)
	if err != nil {
		return nil, err
	}
	log.Printf("Đã tạo booking ID %d: user %d, slot %d, cọc %.2f", booking.ID, userID, booking.SlotID, s.depositAmount)
	return booking, nil
}

// Exit đóng booking đang mở của người dùng: ghi exit_time, ghi đè tiền cọc bằng
// phí tính theo thời gian đỗ, trả chỗ về available (trong transaction của repo).
func (s *BookingService) Exit(ctx context.Context, userID int) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exitTime := time.Now().UTC()
	if exitTime.Before(booking.EntryTime) {
		// Lệch đồng hồ giữa server và DB; không để thời gian đỗ âm
		exitTime = booking.EntryTime
	}
	fee := ComputeFee(booking.EntryTime, exitTime, s.ratePerMinute)

	closed, err := s.bookingRepo.Close(ctx, booking.ID, exitTime, fee)
	if err != nil {
		return nil, err
	}
	log.Printf("Đã đóng booking ID %d: user %d, slot %d, thời gian đỗ %.2f phút, phí %.2f",
		closed.ID, userID, closed.SlotID, exitTime.Sub(closed.EntryTime).Minutes(), fee)
	return closed, nil
}

// ActiveBooking trả về phiên đang mở kèm thời gian đã đỗ và phí ước tính,
// không thay đổi trạng thái.
func (s *BookingService) ActiveBooking(ctx context.Context, userID int) (*domain.ActiveBookingDTO, error) {
	booking, err := s.bookingRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	minutes := now.Sub(booking.EntryTime).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	return &domain.ActiveBookingDTO{
		BookingID:     booking.ID,
		SlotID:        booking.SlotID,
		EntryTime:     booking.EntryTime.Format(domain.TimeLayout),
		DurationMins:  round1(minutes),
		EstimatedCost: round2(s.ratePerMinute * minutes),
		Deposit:       booking.Amount,
	}, nil
}

// History trả về lịch sử booking của người dùng, phiên gần nhất trước.
func (s *BookingService) History(ctx context.Context, userID int) ([]domain.BookingHistoryItemDTO, error) {
	bookings, err := s.bookingRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.BookingHistoryItemDTO, 0, len(bookings))
	for _, b := range bookings {
		item := domain.BookingHistoryItemDTO{
			BookingID: b.ID,
			SlotID:    b.SlotID,
			EntryTime: b.EntryTime.Format(domain.TimeLayout),
			Amount:    b.Amount,
		}
		if b.ExitTime.Valid {
			exit := b.ExitTime.Time.Format(domain.TimeLayout)
			duration := round1(b.ExitTime.Time.Sub(b.EntryTime).Minutes())
			item.ExitTime = &exit
			item.DurationMins = &duration
		}
		items = append(items, item)
	}
	return items, nil
}
