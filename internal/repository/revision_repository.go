package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ops-journal/internal/domain"
)

type RevisionRepository interface {
	Create(ctx context.Context, rev *domain.RecordRevision) error
	GetByID(ctx context.Context, recordID, revID uuid.UUID) (*domain.RecordRevision, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]domain.RecordRevision, error)
}

type revisionRepository struct {
	db *sqlx.DB
}

func NewRevisionRepository(db *sqlx.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) Create(ctx context.Context, rev *domain.RecordRevision) error {
	query := `
		INSERT INTO record_revisions (id, record_id, editor_id, snapshot_before, snapshot_after, secret_ack)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		rev.ID, rev.RecordID, rev.EditorID, rev.SnapshotBefore, rev.SnapshotAfter, rev.SecretAck,
	).Scan(&rev.CreatedAt)
}

func (r *revisionRepository) GetByID(ctx context.Context, recordID, revID uuid.UUID) (*domain.RecordRevision, error) {
	var rev domain.RecordRevision
	query := `SELECT * FROM record_revisions WHERE record_id = $1 AND id = $2`

	err := r.db.GetContext(ctx, &rev, query, recordID, revID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *revisionRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]domain.RecordRevision, error) {
	var revs []domain.RecordRevision
	query := `SELECT * FROM record_revisions WHERE record_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &revs, query, recordID)
	return revs, err
}
