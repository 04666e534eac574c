package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ops-journal/internal/domain"
)

type RecordRepository interface {
	Create(ctx context.Context, record *domain.ChangeRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRecord, error)
	Update(ctx context.Context, record *domain.ChangeRecord) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.FeedFilter, params domain.PaginationParams) ([]domain.ChangeRecord, int64, error)
}

type recordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *domain.ChangeRecord) error {
	query := `
		INSERT INTO change_records (id, node_id, occurred_at, title, description, reason,
			change_type, impact, status, links, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		record.ID, record.NodeID, record.OccurredAt, record.Title, record.Description,
		record.Reason, record.ChangeType, record.Impact, record.Status, record.Links,
		record.CreatedBy,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRecord, error) {
	var record domain.ChangeRecord
	query := `SELECT * FROM change_records WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) Update(ctx context.Context, record *domain.ChangeRecord) error {
	query := `
		UPDATE change_records
		SET occurred_at = $2, title = $3, description = $4, reason = $5,
			change_type = $6, impact = $7, status = $8, links = $9,
			updated_by = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		record.ID, record.OccurredAt, record.Title, record.Description, record.Reason,
		record.ChangeType, record.Impact, record.Status, record.Links, record.UpdatedBy,
	).Scan(&record.UpdatedAt)
}

func (r *recordRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE change_records SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *recordRepository) List(ctx context.Context, filter domain.FeedFilter, params domain.PaginationParams) ([]domain.ChangeRecord, int64, error) {
	params.Validate()

	where := []string{"r.deleted_at IS NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.From != nil {
		where = append(where, "r.occurred_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "r.occurred_at <= "+arg(*filter.To))
	}
	if filter.CreatedBy != nil {
		where = append(where, "r.created_by = "+arg(*filter.CreatedBy))
	}
	if filter.ChangeType != nil {
		where = append(where, "r.change_type = "+arg(*filter.ChangeType))
	}
	if filter.Impact != nil {
		where = append(where, "r.impact = "+arg(*filter.Impact))
	}
	if filter.Status != nil {
		where = append(where, "r.status = "+arg(*filter.Status))
	}
	if filter.NodeID != nil {
		if filter.IncludeDescendants {
			ph := arg(*filter.NodeID)
			where = append(where, fmt.Sprintf(
				"(r.node_id = %s OR EXISTS (SELECT 1 FROM nodes n WHERE n.id = r.node_id AND n.path_ids @> ARRAY[%s]::uuid[]))",
				ph, ph))
		} else {
			where = append(where, "r.node_id = "+arg(*filter.NodeID))
		}
	}

	clause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM change_records r WHERE ` + clause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT r.* FROM change_records r
		WHERE %s
		ORDER BY r.occurred_at DESC
		LIMIT %s OFFSET %s`, clause, arg(params.PageSize), arg(params.Offset()))

	var records []domain.ChangeRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, total, err
}
