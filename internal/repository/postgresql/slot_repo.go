package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"
)

type pgSlotRepository struct {
	db *sql.DB
}

func NewPgSlotRepository(db *sql.DB) repository.SlotRepository {
	return &pgSlotRepository{db: db}
}

func scanSlot(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Slot, error) {
	slot := &domain.Slot{}
	var lastStatusSource sql.NullString
	var lastEventTime sql.NullTime
	err := row.Scan(
		&slot.ID, &slot.Status, &lastStatusSource, &lastEventTime,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastStatusSource.Valid {
		slot.LastStatusUpdateSource = lastStatusSource.String
	}
	if lastEventTime.Valid {
		t := lastEventTime.Time.In(time.UTC)
		slot.LastEventTimestamp = &t
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgSlotRepository) Create(ctx context.Context, status domain.SlotStatus, source string) (*domain.Slot, error) {
	slot := &domain.Slot{Status: status, LastStatusUpdateSource: source}
	query := `INSERT INTO slots (status, last_status_update_source, created_at, updated_at)
	           VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		status, sql.NullString{String: source, Valid: source != ""},
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("SlotRepository.Create: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgSlotRepository) FindByID(ctx context.Context, id int) (*domain.Slot, error) {
	query := `SELECT id, status, last_status_update_source, last_event_timestamp, created_at, updated_at
	           FROM slots WHERE id = $1`
	slot, err := scanSlot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SlotRepository.FindByID: %w", err)
	}
	return slot, nil
}

func (r *pgSlotRepository) FindAll(ctx context.Context) ([]domain.Slot, error) {
	query := `SELECT id, status, last_status_update_source, last_event_timestamp, created_at, updated_at
	           FROM slots ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("SlotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("SlotRepository.FindAll (scanning row): %w", err)
		}
		slots = append(slots, *slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SlotRepository.FindAll (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgSlotRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("SlotRepository.CountAll: %w", err)
	}
	return count, nil
}

func (r *pgSlotRepository) CountByStatus(ctx context.Context, status domain.SlotStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("SlotRepository.CountByStatus: %w", err)
	}
	return count, nil
}

func (r *pgSlotRepository) UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, lastEventTime *time.Time, source string) error {
	query := `UPDATE slots
	           SET status = $1, last_event_timestamp = $2, last_status_update_source = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $4`
	var eventTime sql.NullTime
	if lastEventTime != nil {
		eventTime = sql.NullTime{Time: *lastEventTime, Valid: true}
	}
	var statusSource sql.NullString
	if source != "" {
		statusSource = sql.NullString{String: source, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, status, eventTime, statusSource, id)
	if err != nil {
		return fmt.Errorf("SlotRepository.UpdateStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SlotRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
