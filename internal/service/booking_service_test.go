package service

import (
	"context"
	"testing"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"
	"github.com/DevBolt07/smart-parking/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gopkg.in/guregu/null.v4"
)

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) AllocateAndCreate(ctx context.Context, userID int, depositAmount float64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, depositAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindByID(ctx context.Context, id int) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindOpenByUser(ctx context.Context, userID int) (*domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindAllByUser(ctx context.Context, userID int) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Close(ctx context.Context, bookingID int, exitTime time.Time, amount float64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, exitTime, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func TestBookSlot_Success(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	repo.On("FindOpenByUser", mock.Anything, 7).Return(nil, repository.ErrNoActiveBooking)
	repo.On("AllocateAndCreate", mock.Anything, 7, 100.0).Return(&domain.Booking{
		ID:        1,
		UserID:    7,
		SlotID:    3,
		EntryTime: time.Now().UTC(),
		Amount:    100,
	}, nil)

	booking, err := svc.BookSlot(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 3, booking.SlotID)
	assert.Equal(t, 100.0, booking.Amount)
	repo.AssertExpectations(t)
}

func TestBookSlot_AlreadyHasOpenBooking(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	repo.On("FindOpenByUser", mock.Anything, 7).Return(&domain.Booking{ID: 5, UserID: 7, SlotID: 2}, nil)

	booking, err := svc.BookSlot(context.Background(), 7)
	assert.Nil(t, booking)
	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	repo.AssertNotCalled(t, "AllocateAndCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookSlot_NoCapacity(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	repo.On("FindOpenByUser", mock.Anything, 7).Return(nil, repository.ErrNoActiveBooking)
	repo.On("AllocateAndCreate", mock.Anything, 7, 100.0).Return(nil, repository.ErrNoAvailableSlot)

	booking, err := svc.BookSlot(context.Background(), 7)
	assert.Nil(t, booking)
	assert.ErrorIs(t, err, repository.ErrNoAvailableSlot)
}

func TestExit_ComputesFeeAndCloses(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	entry := time.Now().UTC().Add(-10 * time.Minute)
	repo.On("FindOpenByUser", mock.Anything, 7).Return(&domain.Booking{
		ID:        1,
		UserID:    7,
		SlotID:    3,
		EntryTime: entry,
		Amount:    100,
	}, nil)
	repo.On("Close", mock.Anything, 1, mock.AnythingOfType("time.Time"), mock.AnythingOfType("float64")).
		Return(&domain.Booking{
			ID:        1,
			UserID:    7,
			SlotID:    3,
			EntryTime: entry,
			ExitTime:  null.TimeFrom(time.Now().UTC()),
			Amount:    20,
		}, nil)

	closed, err := svc.Exit(context.Background(), 7)
	assert.NoError(t, err)
	assert.True(t, closed.ExitTime.Valid)

	// Phí khoảng 10 phút x 2 = 20
	feeArg := repo.Calls[1].Arguments.Get(3).(float64)
	assert.InDelta(t, 20.0, feeArg, 0.1)
	repo.AssertExpectations(t)
}

func TestExit_NoActiveBooking(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	repo.On("FindOpenByUser", mock.Anything, 7).Return(nil, repository.ErrNoActiveBooking)

	closed, err := svc.Exit(context.Background(), 7)
	assert.Nil(t, closed)
	assert.ErrorIs(t, err, repository.ErrNoActiveBooking)
	repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExit_AlreadyClosed(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	entry := time.Now().UTC().Add(-5 * time.Minute)
	repo.On("FindOpenByUser", mock.Anything, 7).Return(&domain.Booking{ID: 1, UserID: 7, SlotID: 3, EntryTime: entry}, nil)
	repo.On("Close", mock.Anything, 1, mock.AnythingOfType("time.Time"), mock.AnythingOfType("float64")).
		Return(nil, repository.ErrBookingClosed)

	closed, err := svc.Exit(context.Background(), 7)
	assert.Nil(t, closed)
	assert.ErrorIs(t, err, repository.ErrBookingClosed)
}

func TestComputeFee(t *testing.T) {
	entry := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("five and a half minutes at 2 per minute", func(t *testing.T) {
		exit := time.Date(2025, 1, 15, 10, 5, 30, 0, time.UTC)
		assert.Equal(t, 11.0, ComputeFee(entry, exit, 2))
	})

	t.Run("zero duration", func(t *testing.T) {
		assert.Equal(t, 0.0, ComputeFee(entry, entry, 2))
	})

	t.Run("negative duration clamps to zero", func(t *testing.T) {
		exit := entry.Add(-time.Minute)
		assert.Equal(t, 0.0, ComputeFee(entry, exit, 2))
	})

	t.Run("fee is monotonic in duration", func(t *testing.T) {
		prev := 0.0
		for mins := 1; mins <= 120; mins += 7 {
			fee := ComputeFee(entry, entry.Add(time.Duration(mins)*time.Minute), 2)
			assert.GreaterOrEqual(t, fee, prev)
			prev = fee
		}
	})
}

func TestActiveBooking(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	entry := time.Now().UTC().Add(-30 * time.Minute)
	repo.On("FindOpenByUser", mock.Anything, 7).Return(&domain.Booking{
		ID:        4,
		UserID:    7,
		SlotID:    2,
		EntryTime: entry,
		Amount:    100,
	}, nil)

	active, err := svc.ActiveBooking(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 4, active.BookingID)
	assert.Equal(t, 2, active.SlotID)
	assert.Equal(t, entry.Format(domain.TimeLayout), active.EntryTime)
	assert.InDelta(t, 30.0, active.DurationMins, 0.2)
	assert.InDelta(t, 60.0, active.EstimatedCost, 0.5)
	assert.Equal(t, 100.0, active.Deposit)
}

func TestHistory(t *testing.T) {
	repo := new(MockBookingRepo)
	svc := NewBookingService(repo, 100, 2)

	entry := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	exit := entry.Add(45 * time.Minute)
	repo.On("FindAllByUser", mock.Anything, 7).Return([]domain.Booking{
		{ID: 9, UserID: 7, SlotID: 1, EntryTime: entry.Add(2 * time.Hour), Amount: 100},
		{ID: 8, UserID: 7, SlotID: 3, EntryTime: entry, ExitTime: null.TimeFrom(exit), Amount: 90},
	}, nil)

	items, err := svc.History(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	// Booking đang mở: không có exit_time / duration
	assert.Nil(t, items[0].ExitTime)
	assert.Nil(t, items[0].DurationMins)

	// Booking đã đóng
	assert.NotNil(t, items[1].ExitTime)
	assert.Equal(t, exit.Format(domain.TimeLayout), *items[1].ExitTime)
	assert.Equal(t, 45.0, *items[1].DurationMins)
	assert.Equal(t, 90.0, items[1].Amount)
}
