package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
)

// Service fans a record event out to matching subscriptions and stages one
// outbox row per matched user. It never sends anything itself.
type Service interface {
	OnRecordEvent(ctx context.Context, recordID uuid.UUID, event domain.OutboxEventType) error
}

type service struct {
	recordRepo repository.RecordRepository
	nodeRepo   repository.NodeRepository
	subRepo    repository.SubscriptionRepository
	outboxRepo repository.OutboxRepository
}

func NewService(recordRepo repository.RecordRepository, nodeRepo repository.NodeRepository, subRepo repository.SubscriptionRepository, outboxRepo repository.OutboxRepository) Service {
	return &service{
		recordRepo: recordRepo,
		nodeRepo:   nodeRepo,
		subRepo:    subRepo,
		outboxRepo: outboxRepo,
	}
}

func (s *service) OnRecordEvent(ctx context.Context, recordID uuid.UUID, event domain.OutboxEventType) error {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("record %s not found", recordID)
	}

	node, err := s.nodeRepo.GetByID(ctx, record.NodeID)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("node %s not found", record.NodeID)
	}

	// Edits only reach subscribers who opted in to edit notifications.
	editOnly := event == domain.EventEditedRecord

	direct, err := s.subRepo.ListDirect(ctx, node.ID, editOnly)
	if err != nil {
		return err
	}

	var ancestor []domain.Subscription
	if len(node.PathIDs) > 0 {
		ancestor, err = s.subRepo.ListAncestor(ctx, node.PathIDs, editOnly)
		if err != nil {
			return err
		}
	}

	// A user subscribed both directly and via an ancestor gets one
	// notification, from the more specific subscription. A user is marked
	// seen even when the impact filter drops the match, so a looser
	// ancestor threshold cannot re-admit them.
	seen := make(map[uuid.UUID]bool)
	var entries []domain.OutboxEntry
	for _, sub := range append(direct, ancestor...) {
		if seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		if !record.Impact.MeetsThreshold(sub.ImpactThreshold) {
			continue
		}
		entries = append(entries, domain.OutboxEntry{
			ID:             uuid.New(),
			UserID:         sub.UserID,
			RecordID:       record.ID,
			SubscriptionID: sub.ID,
			EventType:      event,
			Status:         domain.OutboxPending,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	if err := s.outboxRepo.CreateBatch(ctx, entries); err != nil {
		return err
	}

	log.Printf("staged %d notification(s) for record %s (%s)", len(entries), record.ID, event)
	return nil
}
