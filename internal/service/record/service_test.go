package record_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ops-journal/internal/domain"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/record"
	"ops-journal/internal/service/visibility"
	"ops-journal/tests/mocks"
)

type fixture struct {
	recordRepo   *mocks.RecordRepository
	revisionRepo *mocks.RevisionRepository
	nodeRepo     *mocks.NodeRepository
	notifierSvc  *mocks.NotifierService
	svc          record.Service

	node *domain.Node
}

func newFixture() *fixture {
	f := &fixture{
		recordRepo:   new(mocks.RecordRepository),
		revisionRepo: new(mocks.RevisionRepository),
		nodeRepo:     new(mocks.NodeRepository),
		notifierSvc:  new(mocks.NotifierService),
	}

	f.node = &domain.Node{
		ID:             uuid.New(),
		Slug:           "payments",
		Path:           "/platform/payments",
		VisibilityMode: domain.VisibilityPublicInternal,
	}
	f.nodeRepo.On("GetByID", mock.Anything, f.node.ID).Return(f.node, nil)
	f.notifierSvc.On("OnRecordEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	auditRepo := new(mocks.AuditEventRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = record.NewService(
		f.recordRepo,
		f.revisionRepo,
		f.nodeRepo,
		visibility.NewService(f.nodeRepo),
		f.notifierSvc,
		audit.NewService(auditRepo),
	)
	return f
}

func editor() domain.Actor {
	return domain.Actor{ID: uuid.New(), Role: domain.RoleEditor}
}

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("viewer cannot create", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleViewer}, domain.CreateRecordInput{
			NodeID: f.node.ID, Title: "Deploy", Description: "Deployed v2",
		})

		var forbidden *domain.ForbiddenError
		assert.ErrorAs(t, err, &forbidden)
	})

	t.Run("secret-looking content is rejected without acknowledgement", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, editor(), domain.CreateRecordInput{
			NodeID:      f.node.ID,
			Title:       "Rotated credentials",
			Description: "new value is api_key=sk_live_abcdef1234567890abcd",
		})

		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
		f.recordRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("secret acknowledgement bypasses the scanner", func(t *testing.T) {
		f := newFixture()
		f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		created, err := f.svc.Create(ctx, editor(), domain.CreateRecordInput{
			NodeID:      f.node.ID,
			Title:       "Rotated credentials",
			Description: "new value is api_key=sk_live_abcdef1234567890abcd",
			SecretAck:   true,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
	})

	t.Run("create writes an initial revision with empty before snapshot", func(t *testing.T) {
		f := newFixture()
		f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		var rev *domain.RecordRevision
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				rev = args.Get(1).(*domain.RecordRevision)
			}).Return(nil)

		created, err := f.svc.Create(ctx, editor(), domain.CreateRecordInput{
			NodeID:      f.node.ID,
			Title:       "Deploy",
			Description: "Deployed v2 of the gateway",
		})

		assert.NoError(t, err)
		assert.NotNil(t, rev)
		assert.Equal(t, created.ID, rev.RecordID)
		assert.JSONEq(t, `{}`, string(rev.SnapshotBefore))

		var after domain.RecordSnapshot
		assert.NoError(t, json.Unmarshal(rev.SnapshotAfter, &after))
		assert.Equal(t, "Deploy", after.Title)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		f := newFixture()
		f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		created, err := f.svc.Create(ctx, editor(), domain.CreateRecordInput{
			NodeID:      f.node.ID,
			Title:       "Deploy",
			Description: "Deployed v2",
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.ChangeOther, created.ChangeType)
		assert.Equal(t, domain.ImpactLow, created.Impact)
		assert.Equal(t, domain.StatusCompleted, created.Status)
		assert.False(t, created.OccurredAt.IsZero())
	})
}

func TestUpdateRecord(t *testing.T) {
	ctx := context.Background()

	existing := func(f *fixture) *domain.ChangeRecord {
		r := &domain.ChangeRecord{
			ID:          uuid.New(),
			NodeID:      f.node.ID,
			Title:       "Deploy",
			Description: "Deployed v2",
			ChangeType:  domain.ChangeFeature,
			Impact:      domain.ImpactLow,
			Status:      domain.StatusCompleted,
		}
		f.recordRepo.On("GetByID", mock.Anything, r.ID).Return(r, nil)
		return r
	}

	t.Run("explicit null clears the reason", func(t *testing.T) {
		f := newFixture()
		r := existing(f)
		reason := "scheduled"
		r.Reason = &reason

		f.recordRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		var input domain.UpdateRecordInput
		assert.NoError(t, json.Unmarshal([]byte(`{"reason": null}`), &input))

		updated, err := f.svc.Update(ctx, editor(), r.ID, input)

		assert.NoError(t, err)
		assert.Nil(t, updated.Reason)
	})

	t.Run("absent reason is left alone", func(t *testing.T) {
		f := newFixture()
		r := existing(f)
		reason := "scheduled"
		r.Reason = &reason

		f.recordRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		var input domain.UpdateRecordInput
		assert.NoError(t, json.Unmarshal([]byte(`{"title": "Redeploy"}`), &input))

		updated, err := f.svc.Update(ctx, editor(), r.ID, input)

		assert.NoError(t, err)
		assert.Equal(t, "Redeploy", updated.Title)
		assert.Equal(t, "scheduled", *updated.Reason)
	})

	t.Run("update snapshots before and after", func(t *testing.T) {
		f := newFixture()
		r := existing(f)

		f.recordRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		var rev *domain.RecordRevision
		f.revisionRepo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				rev = args.Get(1).(*domain.RecordRevision)
			}).Return(nil)

		newTitle := "Deploy, take two"
		_, err := f.svc.Update(ctx, editor(), r.ID, domain.UpdateRecordInput{Title: &newTitle})

		assert.NoError(t, err)
		assert.NotNil(t, rev)

		var before, after domain.RecordSnapshot
		assert.NoError(t, json.Unmarshal(rev.SnapshotBefore, &before))
		assert.NoError(t, json.Unmarshal(rev.SnapshotAfter, &after))
		assert.Equal(t, "Deploy", before.Title)
		assert.Equal(t, "Deploy, take two", after.Title)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.recordRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, err := f.svc.Update(ctx, editor(), id, domain.UpdateRecordInput{})

		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("records on hidden nodes are filtered out", func(t *testing.T) {
		f := newFixture()

		hidden := &domain.Node{
			ID:             uuid.New(),
			Slug:           "secrets",
			Path:           "/secrets",
			VisibilityMode: domain.VisibilityRestricted,
			AllowedRoles:   domain.RoleList{domain.RoleAdmin},
		}

		visible := domain.ChangeRecord{ID: uuid.New(), NodeID: f.node.ID, Title: "Open"}
		restricted := domain.ChangeRecord{ID: uuid.New(), NodeID: hidden.ID, Title: "Hush"}

		params := domain.PaginationParams{Page: 1, PageSize: 20}
		f.recordRepo.On("List", mock.Anything, mock.Anything, params).
			Return([]domain.ChangeRecord{visible, restricted}, int64(2), nil)
		f.nodeRepo.On("GetByIDs", mock.Anything, []uuid.UUID{f.node.ID, hidden.ID}).
			Return([]domain.Node{*f.node, *hidden}, nil)

		resp, err := f.svc.Feed(ctx, editor(), domain.FeedFilter{}, params)

		assert.NoError(t, err)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, "Open", resp.Data[0].Title)
	})
}
