package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.querier(ctx).ExecContext(ctx, query,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.RoutingKey,
		string(msg.Payload),
		msg.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	msg.ID, _ = result.LastInsertId()
	return nil
}

// SaveBatch stores multiple outbox messages. When called inside a unit of
// work the messages join that transaction.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, created_at, retry_count, last_error
		FROM outbox_messages
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var msg Message
		var eventIDStr, aggregateIDStr, payload, createdAtStr string
		var lastErr sql.NullString

		if err := rows.Scan(
			&msg.ID,
			&eventIDStr,
			&msg.AggregateType,
			&aggregateIDStr,
			&msg.RoutingKey,
			&payload,
			&createdAtStr,
			&msg.RetryCount,
			&lastErr,
		); err != nil {
			return nil, err
		}

		msg.EventID, _ = uuid.Parse(eventIDStr)
		msg.AggregateID, _ = uuid.Parse(aggregateIDStr)
		msg.Payload = json.RawMessage(payload)
		msg.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		if lastErr.Valid {
			msg.LastError = &lastErr.String
		}

		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// MarkPublished records a successful publish.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	query := `UPDATE outbox_messages SET published_at = ? WHERE id = ?`
	_, err := r.querier(ctx).ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// MarkFailed records a failed publish attempt.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `UPDATE outbox_messages SET retry_count = retry_count + 1, last_error = ? WHERE id = ?`
	_, err := r.querier(ctx).ExecContext(ctx, query, errMsg, id)
	return err
}
