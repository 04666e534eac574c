package notifier_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ops-journal/internal/domain"
	"ops-journal/internal/service/notifier"
	"ops-journal/tests/mocks"
)

type fixture struct {
	recordRepo *mocks.RecordRepository
	nodeRepo   *mocks.NodeRepository
	subRepo    *mocks.SubscriptionRepository
	outboxRepo *mocks.OutboxRepository
	svc        notifier.Service

	record *domain.ChangeRecord
	node   *domain.Node
}

func newFixture(impact domain.Impact) *fixture {
	f := &fixture{
		recordRepo: new(mocks.RecordRepository),
		nodeRepo:   new(mocks.NodeRepository),
		subRepo:    new(mocks.SubscriptionRepository),
		outboxRepo: new(mocks.OutboxRepository),
	}

	parentID := uuid.New()
	f.node = &domain.Node{
		ID:      uuid.New(),
		Slug:    "payments",
		Path:    "/platform/payments",
		PathIDs: domain.UUIDArray{parentID},
	}
	f.record = &domain.ChangeRecord{
		ID:     uuid.New(),
		NodeID: f.node.ID,
		Title:  "Rolled out new payment gateway",
		Impact: impact,
	}

	f.recordRepo.On("GetByID", mock.Anything, f.record.ID).Return(f.record, nil)
	f.nodeRepo.On("GetByID", mock.Anything, f.node.ID).Return(f.node, nil)

	f.svc = notifier.NewService(f.recordRepo, f.nodeRepo, f.subRepo, f.outboxRepo)
	return f
}

func (f *fixture) stageCapture() *[]domain.OutboxEntry {
	var captured []domain.OutboxEntry
	f.outboxRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]domain.OutboxEntry)
		}).Return(nil)
	return &captured
}

func TestOnRecordEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("user with direct and ancestor subscription gets one entry", func(t *testing.T) {
		f := newFixture(domain.ImpactHigh)
		userID := uuid.New()
		direct := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.ID}
		viaAncestor := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.PathIDs[0]}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, false).Return([]domain.Subscription{direct}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), false).Return([]domain.Subscription{viaAncestor}, nil)
		captured := f.stageCapture()

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord)

		assert.NoError(t, err)
		assert.Len(t, *captured, 1)
		entry := (*captured)[0]
		assert.Equal(t, userID, entry.UserID)
		assert.Equal(t, direct.ID, entry.SubscriptionID, "direct subscription wins over the ancestor one")
		assert.Equal(t, domain.OutboxPending, entry.Status)
		assert.Equal(t, domain.EventNewRecord, entry.EventType)
	})

	t.Run("edit reaches a user via ancestor when the direct subscription opted out", func(t *testing.T) {
		// Direct subscription on the node has notify_on_edit=false, so the
		// edit-only query filters it out; the ancestor subscription opted
		// in. The user must get exactly one row, through the ancestor.
		f := newFixture(domain.ImpactHigh)
		userID := uuid.New()
		viaAncestor := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.PathIDs[0]}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, true).Return([]domain.Subscription{}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), true).Return([]domain.Subscription{viaAncestor}, nil)
		captured := f.stageCapture()

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventEditedRecord)

		assert.NoError(t, err)
		assert.Len(t, *captured, 1)
		entry := (*captured)[0]
		assert.Equal(t, userID, entry.UserID)
		assert.Equal(t, viaAncestor.ID, entry.SubscriptionID)
		assert.Equal(t, domain.EventEditedRecord, entry.EventType)
	})

	t.Run("re-invoking for the same record and event stages identical tuples", func(t *testing.T) {
		// The outbox unique index on (user_id, record_id, event_type) is
		// what makes the second insert a no-op; the matcher's job is to
		// stage the same conflict key on every invocation.
		f := newFixture(domain.ImpactHigh)
		userID := uuid.New()
		sub := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.ID}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, false).Return([]domain.Subscription{sub}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), false).Return([]domain.Subscription{}, nil)

		var batches [][]domain.OutboxEntry
		f.outboxRepo.On("CreateBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				batches = append(batches, args.Get(1).([]domain.OutboxEntry))
			}).Return(nil)

		assert.NoError(t, f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord))
		assert.NoError(t, f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord))

		assert.Len(t, batches, 2)
		first, second := batches[0][0], batches[1][0]
		assert.Equal(t, first.UserID, second.UserID)
		assert.Equal(t, first.RecordID, second.RecordID)
		assert.Equal(t, first.EventType, second.EventType)
		assert.NotEqual(t, first.ID, second.ID, "row ids differ; dedupe rests on the conflict key, not the pk")
	})

	t.Run("edit events ask only for edit subscribers", func(t *testing.T) {
		f := newFixture(domain.ImpactLow)
		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, true).Return([]domain.Subscription{}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), true).Return([]domain.Subscription{}, nil)

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventEditedRecord)

		assert.NoError(t, err)
		f.outboxRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("impact below threshold is dropped", func(t *testing.T) {
		f := newFixture(domain.ImpactLow)
		threshold := domain.ImpactHigh
		sub := domain.Subscription{ID: uuid.New(), UserID: uuid.New(), NodeID: f.node.ID, ImpactThreshold: &threshold}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, false).Return([]domain.Subscription{sub}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), false).Return([]domain.Subscription{}, nil)

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord)

		assert.NoError(t, err)
		f.outboxRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("dropped direct match is not readmitted by a looser ancestor subscription", func(t *testing.T) {
		f := newFixture(domain.ImpactLow)
		userID := uuid.New()
		threshold := domain.ImpactHigh
		direct := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.ID, ImpactThreshold: &threshold}
		loose := domain.Subscription{ID: uuid.New(), UserID: userID, NodeID: f.node.PathIDs[0]}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, false).Return([]domain.Subscription{direct}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), false).Return([]domain.Subscription{loose}, nil)

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord)

		assert.NoError(t, err)
		f.outboxRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("threshold at or below impact passes", func(t *testing.T) {
		f := newFixture(domain.ImpactMedium)
		threshold := domain.ImpactMedium
		sub := domain.Subscription{ID: uuid.New(), UserID: uuid.New(), NodeID: f.node.ID, ImpactThreshold: &threshold}

		f.subRepo.On("ListDirect", mock.Anything, f.node.ID, false).Return([]domain.Subscription{sub}, nil)
		f.subRepo.On("ListAncestor", mock.Anything, []uuid.UUID(f.node.PathIDs), false).Return([]domain.Subscription{}, nil)
		captured := f.stageCapture()

		err := f.svc.OnRecordEvent(ctx, f.record.ID, domain.EventNewRecord)

		assert.NoError(t, err)
		assert.Len(t, *captured, 1)
	})
}
