package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"

	"github.com/lib/pq"
)

type pgBookingRepository struct {
	db *sql.DB
}

func NewPgBookingRepository(db *sql.DB) repository.BookingRepository {
	return &pgBookingRepository{db: db}
}

const bookingColumns = `id, user_id, slot_id, entry_time, exit_time, amount, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := row.Scan(
		&booking.ID, &booking.UserID, &booking.SlotID, &booking.EntryTime,
		&booking.ExitTime, &booking.Amount, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.EntryTime = booking.EntryTime.In(time.UTC)
	if booking.ExitTime.Valid {
		booking.ExitTime.Time = booking.ExitTime.Time.In(time.UTC)
	}
	booking.CreatedAt = booking.CreatedAt.In(time.UTC)
	booking.UpdatedAt = booking.UpdatedAt.In(time.UTC)
	return booking, nil
}

// AllocateAndCreate thực hiện trọn vẹn phần cấp phát: khóa chỗ trống có id nhỏ
// nhất, đánh dấu booked và tạo booking mở trong cùng một transaction. SKIP LOCKED
// để hai request song song không cùng chọn một chỗ; các partial unique index
// (một booking mở mỗi user, mỗi slot) là lớp chặn cuối nếu caller bỏ qua kiểm tra.
func (r *pgBookingRepository) AllocateAndCreate(ctx context.Context, userID int, depositAmount float64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.AllocateAndCreate (begin tx): %w", err)
	}
	defer tx.Rollback()

	var slotID int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM slots WHERE status = $1 ORDER BY id ASC LIMIT 1 FOR UPDATE SKIP LOCKED`,
		domain.StatusAvailable,
	).Scan(&slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoAvailableSlot
		}
		return nil, fmt.Errorf("BookingRepository.AllocateAndCreate (selecting slot): %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE slots SET status = $1, last_status_update_source = 'booking', updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		domain.StatusBooked, slotID,
	)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.AllocateAndCreate (marking slot): %w", err)
	}

	booking := &domain.Booking{UserID: userID, SlotID: slotID, Amount: depositAmount}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (user_id, slot_id, entry_time, amount, created_at, updated_at)
		  VALUES ($1, $2, CURRENT_TIMESTAMP, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		  RETURNING id, entry_time, created_at, updated_at`,
		userID, slotID, depositAmount,
	).Scan(&booking.ID, &booking.EntryTime, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			switch pqErr.Constraint {
			case "bookings_one_open_per_user":
				return nil, fmt.Errorf("%w: người dùng %d đã có booking đang mở", repository.ErrDuplicateEntry, userID)
			case "bookings_one_open_per_slot":
				return nil, fmt.Errorf("%w: chỗ đỗ %d đã có booking đang mở", repository.ErrDuplicateEntry, slotID)
			}
		}
		return nil, fmt.Errorf("BookingRepository.AllocateAndCreate (inserting booking): %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("BookingRepository.AllocateAndCreate (commit): %w", err)
	}
	booking.EntryTime = booking.EntryTime.In(time.UTC)
	booking.CreatedAt = booking.CreatedAt.In(time.UTC)
	booking.UpdatedAt = booking.UpdatedAt.In(time.UTC)
	return booking, nil
}

func (r *pgBookingRepository) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BookingRepository.FindByID: %w", err)
	}
	return booking, nil
}

func (r *pgBookingRepository) FindOpenByUser(ctx context.Context, userID int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE user_id = $1 AND exit_time IS NULL
	           ORDER BY entry_time DESC LIMIT 1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("BookingRepository.FindOpenByUser: %w", err)
	}
	return booking, nil
}

func (r *pgBookingRepository) FindAllByUser(ctx context.Context, userID int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE user_id = $1
	           ORDER BY entry_time DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.FindAllByUser: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("BookingRepository.FindAllByUser (scanning row): %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("BookingRepository.FindAllByUser (rows error): %w", err)
	}
	return bookings, nil
}

// Close đóng booking đúng một lần và trả chỗ đỗ về available trong cùng một
// transaction, tránh chỗ đỗ bị kẹt ở trạng thái booked khi xe đã ra.
func (r *pgBookingRepository) Close(ctx context.Context, bookingID int, exitTime time.Time, amount float64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Close (begin tx): %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	booking, err := scanBooking(tx.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("BookingRepository.Close (locking booking): %w", err)
	}
	if booking.ExitTime.Valid {
		return nil, fmt.Errorf("%w: booking %d", repository.ErrBookingClosed, bookingID)
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE bookings SET exit_time = $1, amount = $2, updated_at = CURRENT_TIMESTAMP
		  WHERE id = $3 AND exit_time IS NULL
		  RETURNING updated_at`,
		exitTime, amount, bookingID,
	).Scan(&booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Close (updating booking): %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE slots SET status = $1, last_status_update_source = 'booking_exit', last_event_timestamp = $2, updated_at = CURRENT_TIMESTAMP
		  WHERE id = $3 AND status = $4`,
		domain.StatusAvailable, exitTime, booking.SlotID, domain.StatusBooked,
	)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.Close (releasing slot): %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("BookingRepository.Close (commit): %w", err)
	}

	booking.ExitTime.SetValid(exitTime.In(time.UTC))
	booking.Amount = amount
	booking.UpdatedAt = booking.UpdatedAt.In(time.UTC)
	return booking, nil
}
