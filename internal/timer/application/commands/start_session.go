package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// StartSessionCommand contains the data needed to start a session.
type StartSessionCommand struct {
	UserID          uuid.UUID
	TaskID          *uuid.UUID
	Kind            string
	DurationMinutes int
}

// StartSessionHandler handles the StartSessionCommand. Starting while
// another session is active silently cancels it; the single-active
// invariant always wins over the old session.
type StartSessionHandler struct {
	sessionRepo domain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewStartSessionHandler creates a new StartSessionHandler.
func NewStartSessionHandler(sessionRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *StartSessionHandler {
	return &StartSessionHandler{
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
	}
}

// Handle executes the StartSessionCommand.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*domain.Session, error) {
	kind, err := domain.ParseKind(cmd.Kind)
	if err != nil {
		return nil, err
	}

	session, err := domain.NewSession(cmd.UserID, cmd.TaskID, kind, cmd.DurationMinutes)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		now := time.Now()

		active, err := h.sessionRepo.FindActiveByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if active != nil {
			if err := h.sessionRepo.CancelActive(txCtx, cmd.UserID, now); err != nil {
				return err
			}
			cancelled, err := outbox.NewMessage(domain.NewSessionCancelled(active))
			if err != nil {
				return err
			}
			if err := h.outboxRepo.Save(txCtx, cancelled); err != nil {
				return err
			}
		}

		if err := h.sessionRepo.Save(txCtx, session); err != nil {
			return err
		}

		started, err := outbox.NewMessage(domain.NewSessionStarted(session))
		if err != nil {
			return err
		}
		return h.outboxRepo.Save(txCtx, started)
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}
