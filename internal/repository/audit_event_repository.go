package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"ops-journal/internal/domain"
)

type AuditEventRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, filter domain.AuditFilter, params domain.PaginationParams) ([]domain.AuditEvent, int64, error)
}

type auditEventRepository struct {
	db *sqlx.DB
}

func NewAuditEventRepository(db *sqlx.DB) AuditEventRepository {
	return &auditEventRepository{db: db}
}

func (r *auditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, kind, actor_id, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		event.ID, event.Kind, event.ActorID, event.Metadata,
	).Scan(&event.CreatedAt)
}

func (r *auditEventRepository) List(ctx context.Context, filter domain.AuditFilter, params domain.PaginationParams) ([]domain.AuditEvent, int64, error) {
	params.Validate()

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Kind != nil {
		where = append(where, "e.kind = "+arg(*filter.Kind))
	}
	if filter.ActorID != nil {
		where = append(where, "e.actor_id = "+arg(*filter.ActorID))
	}
	if filter.From != nil {
		where = append(where, "e.created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "e.created_at <= "+arg(*filter.To))
	}

	clause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_events e WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT
			e.*,
			u.email AS actor_email
		FROM audit_events e
		LEFT JOIN users u ON u.id = e.actor_id
		WHERE %s
		ORDER BY e.created_at DESC
		LIMIT %s OFFSET %s`, clause, arg(params.PageSize), arg(params.Offset()))

	var events []domain.AuditEvent
	err := r.db.SelectContext(ctx, &events, query, args...)
	return events, total, err
}
