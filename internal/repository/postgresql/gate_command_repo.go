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

type pgGateCommandRepository struct {
	db *sql.DB
}

func NewPgGateCommandRepository(db *sql.DB) repository.GateCommandRepository {
	return &pgGateCommandRepository{db: db}
}

func (r *pgGateCommandRepository) Enqueue(ctx context.Context, gateID string, openDurationSeconds int) (*domain.GateCommand, error) {
	cmd := &domain.GateCommand{GateID: gateID, ShouldOpen: true, OpenDurationSeconds: openDurationSeconds}
	query := `INSERT INTO gate_commands (gate_id, should_open, open_duration_seconds, requested_at)
	           VALUES ($1, TRUE, $2, CURRENT_TIMESTAMP)
	           RETURNING id, requested_at`
	err := r.db.QueryRowContext(ctx, query, gateID, openDurationSeconds).Scan(&cmd.ID, &cmd.RequestedAt)
	if err != nil {
		return nil, fmt.Errorf("GateCommandRepository.Enqueue: %w", err)
	}
	cmd.RequestedAt = cmd.RequestedAt.In(time.UTC)
	return cmd, nil
}

// ConsumePending đánh dấu tiêu thụ lệnh chờ cũ nhất của cổng trong một câu
// lệnh duy nhất, để hai lần poll song song không cùng nhận một lệnh.
func (r *pgGateCommandRepository) ConsumePending(ctx context.Context, gateID string) (*domain.GateCommand, error) {
	cmd := &domain.GateCommand{}
	query := `UPDATE gate_commands SET consumed_at = CURRENT_TIMESTAMP
	           WHERE id = (
	               SELECT id FROM gate_commands
	               WHERE gate_id = $1 AND consumed_at IS NULL
	               ORDER BY requested_at ASC LIMIT 1
	               FOR UPDATE SKIP LOCKED
	           )
	           RETURNING id, gate_id, should_open, open_duration_seconds, requested_at, consumed_at`
	err := r.db.QueryRowContext(ctx, query, gateID).Scan(
		&cmd.ID, &cmd.GateID, &cmd.ShouldOpen, &cmd.OpenDurationSeconds,
		&cmd.RequestedAt, &cmd.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("GateCommandRepository.ConsumePending: %w", err)
	}
	cmd.RequestedAt = cmd.RequestedAt.In(time.UTC)
	if cmd.ConsumedAt.Valid {
		cmd.ConsumedAt.Time = cmd.ConsumedAt.Time.In(time.UTC)
	}
	return cmd, nil
}

func (r *pgGateCommandRepository) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM gate_commands WHERE consumed_at IS NOT NULL OR requested_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("GateCommandRepository.CleanupExpired: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("GateCommandRepository.CleanupExpired (checking rows affected): %w", err)
	}
	return count, nil
}
