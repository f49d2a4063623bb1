package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// CancelSessionCommand cancels an active session. Cancelled time is
// never counted: no stat or task side effects.
type CancelSessionCommand struct {
	SessionID uuid.UUID
}

// CancelSessionHandler handles the CancelSessionCommand.
type CancelSessionHandler struct {
	sessionRepo domain.Repository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
}

// NewCancelSessionHandler creates a new CancelSessionHandler.
func NewCancelSessionHandler(sessionRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CancelSessionHandler {
	return &CancelSessionHandler{
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
	}
}

// Handle executes the CancelSessionCommand.
func (h *CancelSessionHandler) Handle(ctx context.Context, cmd CancelSessionCommand) (*domain.Session, error) {
	var session *domain.Session

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		s, err := h.sessionRepo.ClaimEnded(txCtx, cmd.SessionID, domain.StatusCancelled, time.Now())
		if err != nil {
			return err
		}

		msg, err := outbox.NewMessage(domain.NewSessionCancelled(s))
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
