package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ops-journal/internal/domain"
)

type AttachmentRepository interface {
	Create(ctx context.Context, att *domain.Attachment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]domain.Attachment, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	query := `
		INSERT INTO attachments (id, record_id, filename, mime_type, size_bytes, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		att.ID, att.RecordID, att.Filename, att.MimeType, att.SizeBytes,
		att.StorageKey, att.UploadedBy,
	).Scan(&att.CreatedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var att domain.Attachment
	query := `SELECT * FROM attachments WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &att, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]domain.Attachment, error) {
	var atts []domain.Attachment
	query := `SELECT * FROM attachments WHERE record_id = $1 AND deleted_at IS NULL ORDER BY created_at`
	err := r.db.SelectContext(ctx, &atts, query, recordID)
	return atts, err
}

func (r *attachmentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE attachments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
