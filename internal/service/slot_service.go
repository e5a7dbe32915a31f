package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
)

// AvailabilityBroadcaster đẩy tóm tắt tình trạng bãi xe tới các client
// đang theo dõi (màn hình hiển thị, dashboard).
type AvailabilityBroadcaster interface {
	BroadcastAvailability(summary domain.AvailabilitySummary)
}

type SlotService struct {
	slotRepo    repository.SlotRepository
	broadcaster AvailabilityBroadcaster // Có thể nil nếu không chạy WebSocket
}

func NewSlotService(slotRepo repository.SlotRepository, broadcaster AvailabilityBroadcaster) *SlotService {
	return &SlotService{slotRepo: slotRepo, broadcaster: broadcaster}
}

func (s *SlotService) GetAllSlots(ctx context.Context) ([]domain.SlotView, error) {
	slots, err := s.slotRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, domain.SlotView{ID: slot.ID, Status: slot.Status})
	}
	return views, nil
}

func (s *SlotService) AddSlot(ctx context.Context) (*domain.Slot, error) {
	slot, err := s.slotRepo.Create(ctx, domain.StatusAvailable, "admin_creation")
	if err != nil {
		return nil, err
	}
	s.broadcastAvailability(ctx)
	return slot, nil
}

func (s *SlotService) AvailabilitySummary(ctx context.Context) (*domain.AvailabilitySummary, error) {
	total, err := s.slotRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	available, err := s.slotRepo.CountByStatus(ctx, domain.StatusAvailable)
	if err != nil {
		return nil, err
	}
	return &domain.AvailabilitySummary{
		Total:     total,
		Available: available,
		Occupied:  total - available,
	}, nil
}

// EnsureInitialSlots tạo đủ số chỗ đỗ tối thiểu khi DB còn trống,
// tương đương bước khởi tạo dữ liệu lần chạy đầu.
func (s *SlotService) EnsureInitialSlots(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	existing, err := s.slotRepo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("lỗi đếm chỗ đỗ hiện có: %w", err)
	}
	if existing > 0 {
		return nil
	}
	for i := 0; i < count; i++ {
		if _, err := s.slotRepo.Create(ctx, domain.StatusAvailable, "initial_seed"); err != nil {
			return fmt.Errorf("lỗi tạo chỗ đỗ khởi tạo thứ %d: %w", i+1, err)
		}
	}
	log.Printf("Đã khởi tạo %d chỗ đỗ", count)
	return nil
}

// ApplySensorUpdate cập nhật trạng thái chỗ đỗ từ cảm biến. Trạng thái booked
// do hệ thống booking quản lý và không bao giờ bị cảm biến ghi đè; trường hợp
// đó trả về trạng thái hiện tại mà không thay đổi gì.
func (s *SlotService) ApplySensorUpdate(ctx context.Context, slotID int, isOccupied bool, source string) (domain.SlotStatus, error) {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return "", err
	}

	if slot.Status == domain.StatusBooked {
		log.Printf("Bỏ qua cập nhật cảm biến cho slot %d: đang ở trạng thái booked", slotID)
		return slot.Status, nil
	}

	status := domain.StatusOccupied
	if !isOccupied {
		status = domain.StatusAvailable
	}
	if slot.Status == status {
		return status, nil
	}

	now := time.Now().UTC()
	if err := s.slotRepo.UpdateStatus(ctx, slotID, status, &now, source); err != nil {
		return "", fmt.Errorf("lỗi cập nhật trạng thái slot %d: %w", slotID, err)
	}
	log.Printf("Đã cập nhật trạng thái slot %d thành %s (nguồn: %s)", slotID, status, source)
	s.broadcastAvailability(ctx)
	return status, nil
}

func (s *SlotService) broadcastAvailability(ctx context.Context) {
	if s.broadcaster == nil {
		return
	}
	summary, err := s.AvailabilitySummary(ctx)
	if err != nil {
		log.Printf("Lỗi lấy tóm tắt tình trạng bãi xe để broadcast: %v", err)
		return
	}
	s.broadcaster.BroadcastAvailability(*summary)
}
