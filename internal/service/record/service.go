package record

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/pkg/secrets"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/notifier"
	"ops-journal/internal/service/visibility"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateRecordInput) (*domain.ChangeRecord, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.ChangeRecord, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateRecordInput) (*domain.ChangeRecord, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	Feed(ctx context.Context, actor domain.Actor, filter domain.FeedFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRecord], error)
	ListRevisions(ctx context.Context, actor domain.Actor, recordID uuid.UUID) ([]domain.RecordRevision, error)
	GetRevision(ctx context.Context, actor domain.Actor, recordID, revisionID uuid.UUID) (*domain.RecordRevision, error)
}

type service struct {
	recordRepo   repository.RecordRepository
	revisionRepo repository.RevisionRepository
	nodeRepo     repository.NodeRepository
	visSvc       visibility.Service
	notifierSvc  notifier.Service
	auditSvc     audit.Service
}

func NewService(recordRepo repository.RecordRepository, revisionRepo repository.RevisionRepository, nodeRepo repository.NodeRepository, visSvc visibility.Service, notifierSvc notifier.Service, auditSvc audit.Service) Service {
	return &service{
		recordRepo:   recordRepo,
		revisionRepo: revisionRepo,
		nodeRepo:     nodeRepo,
		visSvc:       visSvc,
		notifierSvc:  notifierSvc,
		auditSvc:     auditSvc,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateRecordInput) (*domain.ChangeRecord, error) {
	if !actor.Role.CanEdit() {
		return nil, domain.NewForbiddenError("editor or admin required to create records")
	}

	node, err := s.visibleNode(ctx, actor, input.NodeID)
	if err != nil {
		return nil, err
	}

	changeType := input.ChangeType
	if changeType == "" {
		changeType = domain.ChangeOther
	}
	impact := input.Impact
	if impact == "" {
		impact = domain.ImpactLow
	}
	status := input.Status
	if status == "" {
		status = domain.StatusCompleted
	}
	if err := validateEnums(changeType, impact, status); err != nil {
		return nil, err
	}

	occurredAt := time.Now()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	if !input.SecretAck {
		fields := []string{input.Title, input.Description}
		if input.Reason != nil {
			fields = append(fields, *input.Reason)
		}
		fields = append(fields, input.Links...)
		if secrets.ScanAll(fields...) {
			return nil, domain.NewValidationError("content looks like it contains a secret; redact it or set secret_ack")
		}
	}

	record := &domain.ChangeRecord{
		ID:          uuid.New(),
		NodeID:      node.ID,
		OccurredAt:  occurredAt,
		Title:       input.Title,
		Description: input.Description,
		Reason:      input.Reason,
		ChangeType:  changeType,
		Impact:      impact,
		Status:      status,
		Links:       input.Links,
		CreatedBy:   actor.ID,
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.writeRevision(ctx, actor.ID, record.ID, json.RawMessage(`{}`), record.Snapshot(), input.SecretAck); err != nil {
		log.Printf("record create: write revision for %s: %v", record.ID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditRecordCreate, &actor.ID, map[string]any{
		"record_id": record.ID.String(),
		"node_id":   record.NodeID.String(),
	})

	go func() {
		if err := s.notifierSvc.OnRecordEvent(context.Background(), record.ID, domain.EventNewRecord); err != nil {
			log.Printf("notify new record %s: %v", record.ID, err)
		}
	}()

	record.Node = node
	return record, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.ChangeRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.NewNotFoundError("record not found")
	}

	node, err := s.visibleNode(ctx, actor, record.NodeID)
	if err != nil {
		return nil, err
	}
	record.Node = node
	return record, nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateRecordInput) (*domain.ChangeRecord, error) {
	if !actor.Role.CanEdit() {
		return nil, domain.NewForbiddenError("editor or admin required to edit records")
	}

	record, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := record.Snapshot()

	if input.OccurredAt != nil {
		record.OccurredAt = *input.OccurredAt
	}
	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.Description != nil {
		record.Description = *input.Description
	}
	if input.Reason.Set {
		record.Reason = input.Reason.Value
	}
	if input.ChangeType != nil {
		record.ChangeType = *input.ChangeType
	}
	if input.Impact != nil {
		record.Impact = *input.Impact
	}
	if input.Status != nil {
		record.Status = *input.Status
	}
	if input.Links != nil {
		record.Links = input.Links
	}
	if err := validateEnums(record.ChangeType, record.Impact, record.Status); err != nil {
		return nil, err
	}

	if !input.SecretAck {
		fields := []string{record.Title, record.Description}
		if record.Reason != nil {
			fields = append(fields, *record.Reason)
		}
		fields = append(fields, record.Links...)
		if secrets.ScanAll(fields...) {
			return nil, domain.NewValidationError("content looks like it contains a secret; redact it or set secret_ack")
		}
	}

	record.UpdatedBy = &actor.ID
	if err := s.recordRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	if err := s.writeRevision(ctx, actor.ID, record.ID, mustJSON(before), record.Snapshot(), input.SecretAck); err != nil {
		log.Printf("record update: write revision for %s: %v", record.ID, err)
	}

	s.auditSvc.Record(ctx, domain.AuditRecordEdit, &actor.ID, map[string]any{
		"record_id": record.ID.String(),
		"node_id":   record.NodeID.String(),
	})

	go func() {
		if err := s.notifierSvc.OnRecordEvent(context.Background(), record.ID, domain.EventEditedRecord); err != nil {
			log.Printf("notify edited record %s: %v", record.ID, err)
		}
	}()

	return record, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if !actor.Role.CanEdit() {
		return domain.NewForbiddenError("editor or admin required to delete records")
	}

	record, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.recordRepo.SoftDelete(ctx, record.ID); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditRecordDelete, &actor.ID, map[string]any{
		"record_id": record.ID.String(),
		"node_id":   record.NodeID.String(),
	})
	return nil
}

// Feed lists records the actor may see, newest occurrence first. Visibility
// is applied after the page query against the records' nodes, so a page can
// come back shorter than the requested size when restricted nodes fall out.
func (s *service) Feed(ctx context.Context, actor domain.Actor, filter domain.FeedFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.ChangeRecord], error) {
	var empty domain.PaginatedResponse[domain.ChangeRecord]

	if filter.NodeID != nil {
		if _, err := s.visibleNode(ctx, actor, *filter.NodeID); err != nil {
			return empty, err
		}
	}

	records, total, err := s.recordRepo.List(ctx, filter, params)
	if err != nil {
		return empty, err
	}

	nodeIDs := make([]uuid.UUID, 0, len(records))
	seen := make(map[uuid.UUID]bool)
	for _, r := range records {
		if !seen[r.NodeID] {
			seen[r.NodeID] = true
			nodeIDs = append(nodeIDs, r.NodeID)
		}
	}

	visibleNodes := make(map[uuid.UUID]*domain.Node)
	if len(nodeIDs) > 0 {
		nodes, err := s.nodeRepo.GetByIDs(ctx, nodeIDs)
		if err != nil {
			return empty, err
		}
		for i := range nodes {
			n := &nodes[i]
			ok, err := s.visSvc.NodeVisible(ctx, actor.Role, n)
			if err != nil {
				return empty, err
			}
			if ok {
				visibleNodes[n.ID] = n
			}
		}
	}

	out := make([]domain.ChangeRecord, 0, len(records))
	for _, r := range records {
		node, ok := visibleNodes[r.NodeID]
		if !ok {
			continue
		}
		r.Node = node
		out = append(out, r)
	}

	return domain.NewPaginatedResponse(out, params.Page, params.PageSize, total), nil
}

func (s *service) ListRevisions(ctx context.Context, actor domain.Actor, recordID uuid.UUID) ([]domain.RecordRevision, error) {
	if _, err := s.GetByID(ctx, actor, recordID); err != nil {
		return nil, err
	}
	return s.revisionRepo.ListByRecord(ctx, recordID)
}

func (s *service) GetRevision(ctx context.Context, actor domain.Actor, recordID, revisionID uuid.UUID) (*domain.RecordRevision, error) {
	if _, err := s.GetByID(ctx, actor, recordID); err != nil {
		return nil, err
	}
	rev, err := s.revisionRepo.GetByID(ctx, recordID, revisionID)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, domain.NewNotFoundError("revision not found")
	}
	return rev, nil
}

func (s *service) visibleNode(ctx context.Context, actor domain.Actor, nodeID uuid.UUID) (*domain.Node, error) {
	node, err := s.nodeRepo.GetByID(ctx, nodeID)
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
	return node, nil
}

func (s *service) writeRevision(ctx context.Context, editorID, recordID uuid.UUID, before json.RawMessage, after domain.RecordSnapshot, secretAck bool) error {
	rev := &domain.RecordRevision{
		ID:             uuid.New(),
		RecordID:       recordID,
		EditorID:       editorID,
		SnapshotBefore: before,
		SnapshotAfter:  mustJSON(after),
	}
	if secretAck {
		rev.SecretAck = &secretAck
	}
	return s.revisionRepo.Create(ctx, rev)
}

func validateEnums(changeType domain.ChangeType, impact domain.Impact, status domain.RecordStatus) error {
	if !changeType.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown change type %q", changeType))
	}
	if !impact.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown impact %q", impact))
	}
	if !status.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	return nil
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
