package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// mockStatsRepo is a mock implementation of domain.Repository.
type mockStatsRepo struct {
	mock.Mock
}

func (m *mockStatsRepo) ApplySessionCompletion(ctx context.Context, userID uuid.UUID, date string, isFocus bool, elapsedSeconds int, subject *tasksDomain.Subject) error {
	args := m.Called(ctx, userID, date, isFocus, elapsedSeconds, subject)
	return args.Error(0)
}

func (m *mockStatsRepo) AddFocusSeconds(ctx context.Context, userID uuid.UUID, date string, seconds int) error {
	args := m.Called(ctx, userID, date, seconds)
	return args.Error(0)
}

func (m *mockStatsRepo) AddTaskCounters(ctx context.Context, userID uuid.UUID, date string, createdDelta, completedDelta int) error {
	args := m.Called(ctx, userID, date, createdDelta, completedDelta)
	return args.Error(0)
}

func (m *mockStatsRepo) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*domain.DailyStat, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyStat), args.Error(1)
}

func (m *mockStatsRepo) FindRange(ctx context.Context, userID uuid.UUID, from, to string) ([]*domain.DailyStat, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DailyStat), args.Error(1)
}

// mockRecordRepo is a mock implementation of domain.StudyRecordRepository.
type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) Save(ctx context.Context, record *domain.StudyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudyRecord), args.Error(1)
}

func (m *mockRecordRepo) FindByUserID(ctx context.Context, userID uuid.UUID, subject *tasksDomain.Subject, limit int) ([]*domain.StudyRecord, error) {
	args := m.Called(ctx, userID, subject, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudyRecord), args.Error(1)
}

func (m *mockRecordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
