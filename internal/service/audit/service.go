package audit

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
)

type Service interface {
	// Record writes an audit event. It is fire-and-forget: failures are
	// logged and never surface to the caller's primary operation.
	Record(ctx context.Context, kind domain.AuditKind, actorID *uuid.UUID, metadata map[string]any)
	List(ctx context.Context, actor domain.Actor, filter domain.AuditFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditEvent], error)
}

type service struct {
	auditRepo repository.AuditEventRepository
}

func NewService(auditRepo repository.AuditEventRepository) Service {
	return &service{auditRepo: auditRepo}
}

func (s *service) Record(ctx context.Context, kind domain.AuditKind, actorID *uuid.UUID, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("audit: failed to marshal metadata for %s: %v", kind, err)
		data = []byte("{}")
	}

	event := &domain.AuditEvent{
		ID:       uuid.New(),
		Kind:     kind,
		ActorID:  actorID,
		Metadata: data,
	}

	if err := s.auditRepo.Create(ctx, event); err != nil {
		log.Printf("audit: failed to record %s: %v", kind, err)
	}
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.AuditFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditEvent], error) {
	if !actor.Role.IsAdmin() {
		return domain.PaginatedResponse[domain.AuditEvent]{}, domain.NewForbiddenError("admin required to view audit events")
	}

	events, total, err := s.auditRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditEvent]{}, err
	}

	return domain.NewPaginatedResponse(events, params.Page, params.PageSize, total), nil
}
