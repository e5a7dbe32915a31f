package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/DevBolt07/smart-parking/internal/config"
	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
)

// IoTService nhận sự kiện thiết bị từ SQS và publish lệnh xuống thiết bị
// qua AWS IoT Data Plane.
type IoTService struct {
	slotService   *SlotService
	iotDataClient *iotdataplane.Client
	cfg           *config.Config
	eventLogRepo  repository.DeviceEventLogRepository
}

func NewIoTService(
	slotService *SlotService,
	iotDataClient *iotdataplane.Client,
	cfg *config.Config,
	eventLogRepo repository.DeviceEventLogRepository,
) *IoTService {
	return &IoTService{
		slotService:   slotService,
		iotDataClient: iotDataClient,
		cfg:           cfg,
		eventLogRepo:  eventLogRepo,
	}
}

// HandleDeviceEvent xử lý một message SQS: ghi log payload gốc vào DB rồi
// chuyển cho service tương ứng theo message_type.
func (s *IoTService) HandleDeviceEvent(ctx context.Context, sqsMessageBody string) error {
	rawPayload := json.RawMessage(sqsMessageBody)

	var genericEvent domain.GenericIoTEvent
	if err := json.Unmarshal(rawPayload, &genericEvent); err != nil {
		log.Printf("Lỗi unmarshal generic IoT event: %v. Body: %s", err, sqsMessageBody)
		s.logEvent(ctx, &domain.DeviceEventLog{
			ReceivedAt:      time.Now().UTC(),
			Payload:         rawPayload,
			ProcessedStatus: "error",
			ProcessingNotes: fmt.Sprintf("Failed to unmarshal generic event: %v", err),
		})
		return fmt.Errorf("lỗi unmarshal generic IoT event: %w", err)
	}
	genericEvent.RawPayload = rawPayload

	logEntry := &domain.DeviceEventLog{
		ReceivedAt:      time.Now().UTC(),
		DeviceID:        genericEvent.DeviceID,
		MqttTopic:       genericEvent.ReceivedMqttTopic,
		MessageType:     genericEvent.MessageType,
		Payload:         rawPayload,
		ProcessedStatus: "pending",
	}
	s.logEvent(ctx, logEntry)

	var processingError error
	switch genericEvent.MessageType {
	case "slot_status":
		var event domain.DeviceSlotStatusEvent
		if err := json.Unmarshal(rawPayload, &event); err == nil {
			event.GenericIoTEvent = genericEvent
			_, processingError = s.slotService.ApplySensorUpdate(ctx, event.SlotID, event.IsOccupied, "device")
		} else {
			processingError = fmt.Errorf("lỗi unmarshal slot_status event: %w", err)
		}
	default:
		log.Printf("IoTService: message_type '%s' không được xử lý. Bỏ qua.", genericEvent.MessageType)
	}

	if processingError != nil {
		log.Printf("IoTService: lỗi xử lý sự kiện '%s' từ thiết bị '%s': %v",
			genericEvent.MessageType, genericEvent.DeviceID, processingError)
		return processingError
	}
	return nil
}

// PublishGateCommand đẩy lệnh mở cổng xuống thiết bị qua MQTT topic của cổng.
// Không làm gì nếu thiếu IoT client hoặc endpoint chưa cấu hình.
func (s *IoTService) PublishGateCommand(ctx context.Context, gateID string, payload domain.GateOpenCommandPayload) error {
	if s.iotDataClient == nil || s.cfg.IoTMQTTEndpoint == "" {
		return nil
	}
	if payload.RequestID == "" {
		payload.RequestID = uuid.New().String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("lỗi marshal lệnh mở cổng: %w", err)
	}

	topic := fmt.Sprintf("parking/gates/%s/commands", gateID)
	_, err = s.iotDataClient.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Payload: body,
		Qos:     1,
	})
	if err != nil {
		return fmt.Errorf("lỗi publish lên topic '%s': %w", topic, err)
	}
	log.Printf("Đã publish lệnh mở cổng '%s' (request ID: %s)", gateID, payload.RequestID)
	return nil
}

func (s *IoTService) logEvent(ctx context.Context, entry *domain.DeviceEventLog) {
	if s.eventLogRepo == nil {
		return
	}
	if err := s.eventLogRepo.Create(ctx, entry); err != nil {
		log.Printf("Lỗi khi ghi log sự kiện thiết bị vào DB: %v", err)
	}
}
