package attachment

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/visibility"
)

const maxAttachmentSize = 25 << 20 // 25 MiB

type Service interface {
	Upload(ctx context.Context, actor domain.Actor, recordID uuid.UUID, filename, mimeType string, size int64, body io.Reader) (*domain.Attachment, error)
	List(ctx context.Context, actor domain.Actor, recordID uuid.UUID) ([]domain.Attachment, error)
	DownloadURL(ctx context.Context, actor domain.Actor, recordID, attachmentID uuid.UUID) (string, error)
	Delete(ctx context.Context, actor domain.Actor, recordID, attachmentID uuid.UUID) error
}

type service struct {
	attRepo    repository.AttachmentRepository
	recordRepo repository.RecordRepository
	nodeRepo   repository.NodeRepository
	visSvc     visibility.Service
	auditSvc   audit.Service
	minio      *minio.Client
	bucket     string
}

func NewService(attRepo repository.AttachmentRepository, recordRepo repository.RecordRepository, nodeRepo repository.NodeRepository, visSvc visibility.Service, auditSvc audit.Service, minioClient *minio.Client, bucket string) Service {
	return &service{
		attRepo:    attRepo,
		recordRepo: recordRepo,
		nodeRepo:   nodeRepo,
		visSvc:     visSvc,
		auditSvc:   auditSvc,
		minio:      minioClient,
		bucket:     bucket,
	}
}

func (s *service) Upload(ctx context.Context, actor domain.Actor, recordID uuid.UUID, filename, mimeType string, size int64, body io.Reader) (*domain.Attachment, error) {
	if !actor.Role.CanEdit() {
		return nil, domain.NewForbiddenError("editor or admin required to upload attachments")
	}
	if s.minio == nil {
		return nil, domain.NewValidationError("attachment storage is not configured")
	}
	if size <= 0 || size > maxAttachmentSize {
		return nil, domain.NewValidationError("attachment must be between 1 byte and 25 MiB")
	}
	if filename == "" {
		return nil, domain.NewValidationError("filename is required")
	}

	record, err := s.visibleRecord(ctx, actor, recordID)
	if err != nil {
		return nil, err
	}

	storageKey := fmt.Sprintf("records/%s/%s-%s", record.ID, uuid.New().String()[:8], filename)

	_, err = s.minio.PutObject(ctx, s.bucket, storageKey, body, size, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := &domain.Attachment{
		ID:         uuid.New(),
		RecordID:   record.ID,
		Filename:   filename,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		UploadedBy: actor.ID,
	}

	if err := s.attRepo.Create(ctx, att); err != nil {
		if rmErr := s.minio.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{}); rmErr != nil {
			log.Printf("attachment upload: orphaned object %s: %v", storageKey, rmErr)
		}
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditAttachmentUpload, &actor.ID, map[string]any{
		"attachment_id": att.ID.String(),
		"record_id":     record.ID.String(),
		"filename":      filename,
	})

	return att, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, recordID uuid.UUID) ([]domain.Attachment, error) {
	if _, err := s.visibleRecord(ctx, actor, recordID); err != nil {
		return nil, err
	}
	return s.attRepo.ListByRecord(ctx, recordID)
}

// DownloadURL returns a short-lived presigned link instead of streaming the
// object through the API.
func (s *service) DownloadURL(ctx context.Context, actor domain.Actor, recordID, attachmentID uuid.UUID) (string, error) {
	if s.minio == nil {
		return "", domain.NewValidationError("attachment storage is not configured")
	}

	att, err := s.ownedAttachment(ctx, actor, recordID, attachmentID)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

	u, err := s.minio.PresignedGetObject(ctx, s.bucket, att.StorageKey, 15*time.Minute, params)
	if err != nil {
		return "", fmt.Errorf("presign attachment: %w", err)
	}
	return u.String(), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, recordID, attachmentID uuid.UUID) error {
	if !actor.Role.CanEdit() {
		return domain.NewForbiddenError("editor or admin required to delete attachments")
	}

	att, err := s.ownedAttachment(ctx, actor, recordID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.attRepo.SoftDelete(ctx, att.ID); err != nil {
		return err
	}

	// Best effort: the row is already gone, a leftover object is only waste.
	if s.minio != nil {
		if err := s.minio.RemoveObject(ctx, s.bucket, att.StorageKey, minio.RemoveObjectOptions{}); err != nil {
			log.Printf("attachment delete: remove object %s: %v", att.StorageKey, err)
		}
	}

	s.auditSvc.Record(ctx, domain.AuditAttachmentDelete, &actor.ID, map[string]any{
		"attachment_id": att.ID.String(),
		"record_id":     att.RecordID.String(),
	})
	return nil
}

func (s *service) ownedAttachment(ctx context.Context, actor domain.Actor, recordID, attachmentID uuid.UUID) (*domain.Attachment, error) {
	if _, err := s.visibleRecord(ctx, actor, recordID); err != nil {
		return nil, err
	}

	att, err := s.attRepo.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if att == nil || att.RecordID != recordID {
		return nil, domain.NewNotFoundError("attachment not found")
	}
	return att, nil
}

func (s *service) visibleRecord(ctx context.Context, actor domain.Actor, recordID uuid.UUID) (*domain.ChangeRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.NewNotFoundError("record not found")
	}

	node, err := s.nodeRepo.GetByID(ctx, record.NodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, domain.NewNotFoundError("node not found")
	}
	visible, err := s.visSvc.NodeVisible(ctx, actor.Role, node)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.NewForbiddenError("node is not visible to you")
	}
	return record, nil
}
