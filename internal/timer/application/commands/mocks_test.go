package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// mockSessionRepo is a mock implementation of domain.Repository.
type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) CancelActive(ctx context.Context, userID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

func (m *mockSessionRepo) Pause(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) Resume(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) ClaimEnded(ctx context.Context, id uuid.UUID, status domain.Status, now time.Time) (*domain.Session, error) {
	args := m.Called(ctx, id, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) RecordHeartbeat(ctx context.Context, id uuid.UUID, status domain.Status, elapsedSeconds int, now time.Time) (*domain.Session, error) {
	args := m.Called(ctx, id, status, elapsedSeconds, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) FindHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Session, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) FindSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.Session, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockStatsRepo is a mock implementation of the insights domain Repository.
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

func (m *mockStatsRepo) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*insightsDomain.DailyStat, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*insightsDomain.DailyStat), args.Error(1)
}

func (m *mockStatsRepo) FindRange(ctx context.Context, userID uuid.UUID, from, to string) ([]*insightsDomain.DailyStat, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*insightsDomain.DailyStat), args.Error(1)
}

// mockTaskRepo is a mock implementation of the tasks domain Repository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, task *tasksDomain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*tasksDomain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasksDomain.Task), args.Error(1)
}

func (m *mockTaskRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*tasksDomain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasksDomain.Task), args.Error(1)
}

func (m *mockTaskRepo) FindBySubject(ctx context.Context, userID uuid.UUID, subject tasksDomain.Subject) ([]*tasksDomain.Task, error) {
	args := m.Called(ctx, userID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tasksDomain.Task), args.Error(1)
}

func (m *mockTaskRepo) DeactivateAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockTaskRepo) Activate(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockTaskRepo) RecordFocusCompletion(ctx context.Context, id uuid.UUID, now time.Time) (tasksDomain.FocusCompletionResult, error) {
	args := m.Called(ctx, id, now)
	return args.Get(0).(tasksDomain.FocusCompletionResult), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTaskRepo) StatsByUserID(ctx context.Context, userID uuid.UUID) (*tasksDomain.Stats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasksDomain.Stats), args.Error(1)
}

// mockSubjectResolver is a mock subject lookup.
type mockSubjectResolver struct {
	mock.Mock
}

func (m *mockSubjectResolver) SubjectOf(ctx context.Context, taskID uuid.UUID) (*tasksDomain.Subject, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasksDomain.Subject), args.Error(1)
}
