package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	insightsCommands "github.com/yifanzh/studyclock/internal/insights/application/commands"
	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	tasksCommands "github.com/yifanzh/studyclock/internal/tasks/application/commands"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// CompleteSessionCommand completes an active session.
type CompleteSessionCommand struct {
	SessionID uuid.UUID
}

// CompleteSessionHandler handles the CompleteSessionCommand.
//
// The claim on the session row, the daily stat upsert and the task
// progress update commit as one unit: two concurrent completes cannot
// both trigger the side effects, and a storage failure in either side
// effect leaves the session active.
type CompleteSessionHandler struct {
	sessionRepo domain.Repository
	stats       *insightsCommands.RecordSessionCompletionHandler
	progress    *tasksCommands.RecordFocusCompletionHandler
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewCompleteSessionHandler creates a new CompleteSessionHandler.
func NewCompleteSessionHandler(
	sessionRepo domain.Repository,
	stats *insightsCommands.RecordSessionCompletionHandler,
	progress *tasksCommands.RecordFocusCompletionHandler,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CompleteSessionHandler {
	return &CompleteSessionHandler{
		sessionRepo: sessionRepo,
		stats:       stats,
		progress:    progress,
		outboxRepo:  outboxRepo,
		uow:         uow,
	}
}

// Handle executes the CompleteSessionCommand.
func (h *CompleteSessionHandler) Handle(ctx context.Context, cmd CompleteSessionCommand) (*domain.Session, error) {
	var session *domain.Session

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := time.Now()

		// Claim the row first. Exactly one concurrent caller gets past
		// this line; the rest receive ErrState.
		s, err := h.sessionRepo.ClaimEnded(txCtx, cmd.SessionID, domain.StatusCompleted, now)
		if err != nil {
			return err
		}

		err = h.stats.Handle(txCtx, insightsCommands.RecordSessionCompletionCommand{
			UserID:         s.UserID,
			TaskID:         s.TaskID,
			IsFocus:        s.IsFocus(),
			ElapsedSeconds: s.ElapsedSeconds,
			CompletedAt:    now,
		})
		if err != nil {
			return err
		}

		if s.IsFocus() && s.TaskID != nil {
			err = h.progress.Handle(txCtx, tasksCommands.RecordFocusCompletionCommand{
				UserID:      s.UserID,
				TaskID:      *s.TaskID,
				CompletedAt: now,
			})
			if err != nil {
				return err
			}
		}

		msg, err := outbox.NewMessage(domain.NewSessionCompleted(s))
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Save(txCtx, msg); err != nil {
			return err
		}

		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}
