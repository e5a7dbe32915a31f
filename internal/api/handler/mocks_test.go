package handler

import (
	"context"
	"time"

	"github.com/DevBolt07/smart-parking/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSlotRepo struct {
	mock.Mock
}

func (m *MockSlotRepo) Create(ctx context.Context, status domain.SlotStatus, source string) (*domain.Slot, error) {
	args := m.Called(ctx, status, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepo) FindByID(ctx context.Context, id int) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepo) FindAll(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotRepo) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepo) CountByStatus(ctx context.Context, status domain.SlotStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepo) UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, lastEventTime *time.Time, source string) error {
	args := m.Called(ctx, id, status, lastEventTime, source)
	return args.Error(0)
}

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

type MockGateCommandRepo struct {
	mock.Mock
}

func (m *MockGateCommandRepo) Enqueue(ctx context.Context, gateID string, openDurationSeconds int) (*domain.GateCommand, error) {
	args := m.Called(ctx, gateID, openDurationSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GateCommand), args.Error(1)
}

func (m *MockGateCommandRepo) ConsumePending(ctx context.Context, gateID string) (*domain.GateCommand, error) {
	args := m.Called(ctx, gateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GateCommand), args.Error(1)
}

func (m *MockGateCommandRepo) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
