package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ops-journal/internal/domain"
)

type NotifierService struct {
	mock.Mock
}

func (m *NotifierService) OnRecordEvent(ctx context.Context, recordID uuid.UUID, event domain.OutboxEventType) error {
	args := m.Called(ctx, recordID, event)
	return args.Error(0)
}

type VisibilityService struct {
	mock.Mock
}

func (m *VisibilityService) NodeVisible(ctx context.Context, role domain.Role, node *domain.Node) (bool, error) {
	args := m.Called(ctx, role, node)
	return args.Bool(0), args.Error(1)
}
