package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
)

type NodeRepository struct {
	mock.Mock
}

func (m *NodeRepository) Create(ctx context.Context, node *domain.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *NodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *NodeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Node, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *NodeRepository) FindRootBySlug(ctx context.Context, slug string) (*domain.Node, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *NodeRepository) ListAll(ctx context.Context) ([]domain.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *NodeRepository) ListRoots(ctx context.Context) ([]domain.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *NodeRepository) ListSubtree(ctx context.Context, rootID uuid.UUID) ([]domain.Node, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Node), args.Error(1)
}

func (m *NodeRepository) ApplyTreeUpdate(ctx context.Context, root *domain.Node, descendants []domain.NodePathUpdate) error {
	args := m.Called(ctx, root, descendants)
	return args.Error(0)
}

func (m *NodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) Create(ctx context.Context, record *domain.ChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChangeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeRecord), args.Error(1)
}

func (m *RecordRepository) Update(ctx context.Context, record *domain.ChangeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *RecordRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RecordRepository) List(ctx context.Context, filter domain.FeedFilter, params domain.PaginationParams) ([]domain.ChangeRecord, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.ChangeRecord), args.Get(1).(int64), args.Error(2)
}

type RevisionRepository struct {
	mock.Mock
}

func (m *RevisionRepository) Create(ctx context.Context, rev *domain.RecordRevision) error {
	args := m.Called(ctx, rev)
	return args.Error(0)
}

func (m *RevisionRepository) GetByID(ctx context.Context, recordID, revID uuid.UUID) (*domain.RecordRevision, error) {
	args := m.Called(ctx, recordID, revID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordRevision), args.Error(1)
}

func (m *RevisionRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]domain.RecordRevision, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecordRevision), args.Error(1)
}

type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) ListDirect(ctx context.Context, nodeID uuid.UUID, editOnly bool) ([]domain.Subscription, error) {
	args := m.Called(ctx, nodeID, editOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) ListAncestor(ctx context.Context, nodeIDs []uuid.UUID, editOnly bool) ([]domain.Subscription, error) {
	args := m.Called(ctx, nodeIDs, editOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) CreateBatch(ctx context.Context, entries []domain.OutboxEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *OutboxRepository) ListPending(ctx context.Context, limit int) ([]domain.PendingDelivery, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PendingDelivery), args.Error(1)
}

func (m *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

type AuditEventRepository struct {
	mock.Mock
}

func (m *AuditEventRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *AuditEventRepository) List(ctx context.Context, filter domain.AuditFilter, params domain.PaginationParams) ([]domain.AuditEvent, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.AuditEvent), args.Get(1).(int64), args.Error(2)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, session *repository.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*repository.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Session), args.Error(1)
}

func (m *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *SessionRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}
