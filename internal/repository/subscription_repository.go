package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"ops-journal/internal/domain"
)

type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error)
	ListDirect(ctx context.Context, nodeID uuid.UUID, editOnly bool) ([]domain.Subscription, error)
	ListAncestor(ctx context.Context, nodeIDs []uuid.UUID, editOnly bool) ([]domain.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, user_id, node_id, include_descendants, notify_on_edit, mode, impact_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, node_id) DO UPDATE
		SET include_descendants = EXCLUDED.include_descendants,
			notify_on_edit = EXCLUDED.notify_on_edit,
			mode = EXCLUDED.mode,
			impact_threshold = EXCLUDED.impact_threshold,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		sub.ID, sub.UserID, sub.NodeID, sub.IncludeDescendants, sub.NotifyOnEdit,
		sub.Mode, sub.ImpactThreshold,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	query := `SELECT * FROM subscriptions WHERE id = $1`

	err := r.db.GetContext(ctx, &sub, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	query := `SELECT * FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &subs, query, userID)
	return subs, err
}

// ListDirect returns immediate-mode subscriptions on the node itself.
// With editOnly set, only subscriptions that opted into edit notifications.
func (r *subscriptionRepository) ListDirect(ctx context.Context, nodeID uuid.UUID, editOnly bool) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	query := `SELECT * FROM subscriptions WHERE node_id = $1 AND mode = 'immediate'`
	if editOnly {
		query += ` AND notify_on_edit = true`
	}
	err := r.db.SelectContext(ctx, &subs, query, nodeID)
	return subs, err
}

// ListAncestor returns immediate-mode subscriptions with include_descendants
// registered on any of the given ancestor nodes.
func (r *subscriptionRepository) ListAncestor(ctx context.Context, nodeIDs []uuid.UUID, editOnly bool) ([]domain.Subscription, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	var subs []domain.Subscription
	query := `SELECT * FROM subscriptions WHERE include_descendants = true AND mode = 'immediate' AND node_id = ANY($1)`
	if editOnly {
		query += ` AND notify_on_edit = true`
	}
	err := r.db.SelectContext(ctx, &subs, query, pq.GenericArray{A: nodeIDs})
	return subs, err
}

func (r *subscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM subscriptions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
