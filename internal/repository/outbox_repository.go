package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ops-journal/internal/domain"
)

type OutboxRepository interface {
	CreateBatch(ctx context.Context, entries []domain.OutboxEntry) error
	ListPending(ctx context.Context, limit int) ([]domain.PendingDelivery, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// CreateBatch inserts delivery intents. The unique index on
// (user_id, record_id, event_type) makes retried enqueues a no-op.
func (r *outboxRepository) CreateBatch(ctx context.Context, entries []domain.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO notification_outbox (id, user_id, record_id, subscription_id, event_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, record_id, event_type) DO NOTHING`

	for _, e := range entries {
		if _, err := r.db.ExecContext(ctx, query,
			e.ID, e.UserID, e.RecordID, e.SubscriptionID, e.EventType, e.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]domain.PendingDelivery, error) {
	var pending []domain.PendingDelivery
	query := `
		SELECT
			o.*,
			u.email AS user_email,
			u.full_name AS user_name,
			r.title AS record_title,
			n.name AS node_name,
			n.path AS node_path
		FROM notification_outbox o
		JOIN users u ON u.id = o.user_id
		JOIN change_records r ON r.id = o.record_id
		JOIN nodes n ON n.id = r.node_id
		WHERE o.status = 'pending'
		ORDER BY o.created_at
		LIMIT $1`

	err := r.db.SelectContext(ctx, &pending, query, limit)
	return pending, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notification_outbox SET status = 'sent', sent_at = NOW() WHERE id = $1 AND status = 'pending'`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `UPDATE notification_outbox SET status = 'failed', failed_at = NOW(), error_message = $2 WHERE id = $1 AND status = 'pending'`
	_, err := r.db.ExecContext(ctx, query, id, errMsg)
	return err
}
