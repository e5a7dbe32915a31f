package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
)

// GateCommandPublisher đẩy lệnh mở cổng xuống thiết bị qua kênh push (MQTT).
// Kênh poll HTTP vẫn là đường chính; push chỉ là tối ưu khi có cấu hình.
type GateCommandPublisher interface {
	PublishGateCommand(ctx context.Context, gateID string, payload domain.GateOpenCommandPayload) error
}

type GateService struct {
	gateRepo            repository.GateCommandRepository
	publisher           GateCommandPublisher // Có thể nil
	openDurationSeconds int
	commandTTL          time.Duration
}

func NewGateService(gateRepo repository.GateCommandRepository, publisher GateCommandPublisher, openDurationSeconds int, commandTTL time.Duration) *GateService {
	return &GateService{
		gateRepo:            gateRepo,
		publisher:           publisher,
		openDurationSeconds: openDurationSeconds,
		commandTTL:          commandTTL,
	}
}

// RequestOpen xếp một lệnh mở cổng để thiết bị poll về, và publish qua MQTT
// nếu được cấu hình. Lỗi publish không chặn luồng chính vì thiết bị vẫn poll.
func (s *GateService) RequestOpen(ctx context.Context, gateID string) error {
	cmd, err := s.gateRepo.Enqueue(ctx, gateID, s.openDurationSeconds)
	if err != nil {
		return err
	}
	log.Printf("Đã xếp lệnh mở cổng '%s' (command ID: %d)", gateID, cmd.ID)

	if s.publisher != nil {
		payload := domain.GateOpenCommandPayload{
			Command:      "open",
			GateID:       gateID,
			OpenDuration: s.openDurationSeconds,
		}
		if err := s.publisher.PublishGateCommand(ctx, gateID, payload); err != nil {
			log.Printf("Lỗi publish lệnh mở cổng '%s' qua IoT: %v", gateID, err)
		}
	}
	return nil
}

// Poll trả về và tiêu thụ lệnh đang chờ của cổng; không có lệnh thì cổng đóng.
func (s *GateService) Poll(ctx context.Context, gateID string) (*domain.GateStatusDTO, error) {
	cmd, err := s.gateRepo.ConsumePending(ctx, gateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.GateStatusDTO{GateID: gateID, ShouldOpen: false, OpenDuration: 0}, nil
		}
		return nil, err
	}
	return &domain.GateStatusDTO{
		GateID:       gateID,
		ShouldOpen:   cmd.ShouldOpen,
		OpenDuration: cmd.OpenDurationSeconds,
	}, nil
}

// CleanupExpired xóa lệnh đã tiêu thụ và lệnh quá hạn chưa được poll.
func (s *GateService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.gateRepo.CleanupExpired(ctx, s.commandTTL)
}
