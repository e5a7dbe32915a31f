package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
)

type pgDeviceEventLogRepository struct {
	db *sql.DB
}

func NewPgDeviceEventLogRepository(db *sql.DB) repository.DeviceEventLogRepository {
	return &pgDeviceEventLogRepository{db: db}
}

func (r *pgDeviceEventLogRepository) Create(ctx context.Context, event *domain.DeviceEventLog) error {
	query := `INSERT INTO device_events_log (received_at, device_id, mqtt_topic, message_type, payload, processed_status, processing_notes)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		event.ReceivedAt,
		sql.NullString{String: event.DeviceID, Valid: event.DeviceID != ""},
		sql.NullString{String: event.MqttTopic, Valid: event.MqttTopic != ""},
		sql.NullString{String: event.MessageType, Valid: event.MessageType != ""},
		[]byte(event.Payload),
		event.ProcessedStatus,
		sql.NullString{String: event.ProcessingNotes, Valid: event.ProcessingNotes != ""},
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("DeviceEventLogRepository.Create: %w", err)
	}
	return nil
}
