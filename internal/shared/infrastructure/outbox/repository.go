package outbox

import "context"

// Repository defines storage for outbox messages.
type Repository interface {
	// Save stores a new outbox message, joining any transaction in the context.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores multiple outbox messages atomically.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished retrieves unpublished messages ordered by creation time.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished records a successful publish.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a failed publish attempt.
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}
