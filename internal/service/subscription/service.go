package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/visibility"
)

type Service interface {
	Upsert(ctx context.Context, actor domain.Actor, input domain.UpsertSubscriptionInput) (*domain.Subscription, error)
	ListOwn(ctx context.Context, actor domain.Actor) ([]domain.Subscription, error)
	Remove(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type service struct {
	subRepo  repository.SubscriptionRepository
	nodeRepo repository.NodeRepository
	visSvc   visibility.Service
	auditSvc audit.Service
}

func NewService(subRepo repository.SubscriptionRepository, nodeRepo repository.NodeRepository, visSvc visibility.Service, auditSvc audit.Service) Service {
	return &service{
		subRepo:  subRepo,
		nodeRepo: nodeRepo,
		visSvc:   visSvc,
		auditSvc: auditSvc,
	}
}

// Upsert creates or replaces the actor's subscription on a node. One
// subscription per (user, node); a second call overwrites the options.
func (s *service) Upsert(ctx context.Context, actor domain.Actor, input domain.UpsertSubscriptionInput) (*domain.Subscription, error) {
	node, err := s.nodeRepo.GetByID(ctx, input.NodeID)
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

	sub := &domain.Subscription{
		ID:                 uuid.New(),
		UserID:             actor.ID,
		NodeID:             node.ID,
		IncludeDescendants: true,
		NotifyOnEdit:       true,
		Mode:               domain.SubscriptionImmediate,
	}
	if input.IncludeDescendants != nil {
		sub.IncludeDescendants = *input.IncludeDescendants
	}
	if input.NotifyOnEdit != nil {
		sub.NotifyOnEdit = *input.NotifyOnEdit
	}
	if input.Mode != nil {
		if !input.Mode.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown subscription mode %q", *input.Mode))
		}
		sub.Mode = *input.Mode
	}
	if input.ImpactThreshold != nil {
		if !input.ImpactThreshold.IsValid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown impact threshold %q", *input.ImpactThreshold))
		}
		sub.ImpactThreshold = input.ImpactThreshold
	}

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, domain.AuditSubscriptionAdd, &actor.ID, map[string]any{
		"subscription_id": sub.ID.String(),
		"node_id":         node.ID.String(),
	})

	sub.Node = node
	return sub, nil
}

// ListOwn returns the actor's subscriptions, dropping those whose node is no
// longer visible to them.
func (s *service) ListOwn(ctx context.Context, actor domain.Actor) ([]domain.Subscription, error) {
	subs, err := s.subRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Subscription, 0, len(subs))
	for i := range subs {
		node, err := s.nodeRepo.GetByID(ctx, subs[i].NodeID)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		visible, err := s.visSvc.NodeVisible(ctx, actor.Role, node)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		subs[i].Node = node
		out = append(out, subs[i])
	}
	return out, nil
}

func (s *service) Remove(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// Treat another user's subscription as nonexistent rather than
	// confirming it exists.
	if sub == nil || sub.UserID != actor.ID {
		return domain.NewNotFoundError("subscription not found")
	}

	if err := s.subRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, domain.AuditSubscriptionRemove, &actor.ID, map[string]any{
		"subscription_id": sub.ID.String(),
		"node_id":         sub.NodeID.String(),
	})
	return nil
}
