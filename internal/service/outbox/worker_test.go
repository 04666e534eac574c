package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ops-journal/internal/domain"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/outbox"
	"ops-journal/tests/mocks"
)

func pendingDelivery(email string) domain.PendingDelivery {
	return domain.PendingDelivery{
		OutboxEntry: domain.OutboxEntry{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			RecordID:  uuid.New(),
			EventType: domain.EventNewRecord,
			Status:    domain.OutboxPending,
		},
		UserEmail:   email,
		UserName:    "Sam",
		RecordTitle: "Enabled new rate limiter",
		NodeName:    "Payments",
		NodePath:    "/platform/payments",
	}
}

func newWorker(outboxRepo *mocks.OutboxRepository, mailer *mocks.Mailer) *outbox.Worker {
	auditRepo := new(mocks.AuditEventRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	return outbox.NewWorker(outboxRepo, mailer, audit.NewService(auditRepo), time.Second, 20, "https://journal.example.com")
}

func TestProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("successful delivery is marked sent", func(t *testing.T) {
		d := pendingDelivery("sam@example.com")
		outboxRepo := new(mocks.OutboxRepository)
		outboxRepo.On("ListPending", mock.Anything, 20).Return([]domain.PendingDelivery{d}, nil)
		outboxRepo.On("MarkSent", mock.Anything, d.ID).Return(nil)

		mailer := new(mocks.Mailer)
		mailer.On("Send", mock.Anything, "sam@example.com", "New change: Enabled new rate limiter", mock.Anything).Return(nil)

		n := newWorker(outboxRepo, mailer).ProcessBatch(ctx)

		assert.Equal(t, 1, n)
		outboxRepo.AssertExpectations(t)
		mailer.AssertExpectations(t)
	})

	t.Run("send failure marks the row failed", func(t *testing.T) {
		d := pendingDelivery("sam@example.com")
		outboxRepo := new(mocks.OutboxRepository)
		outboxRepo.On("ListPending", mock.Anything, 20).Return([]domain.PendingDelivery{d}, nil)
		outboxRepo.On("MarkFailed", mock.Anything, d.ID, "smtp unreachable").Return(nil)

		mailer := new(mocks.Mailer)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp unreachable"))

		newWorker(outboxRepo, mailer).ProcessBatch(ctx)

		outboxRepo.AssertExpectations(t)
		outboxRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		bad := pendingDelivery("bounce@example.com")
		good := pendingDelivery("sam@example.com")

		outboxRepo := new(mocks.OutboxRepository)
		outboxRepo.On("ListPending", mock.Anything, 20).Return([]domain.PendingDelivery{bad, good}, nil)
		outboxRepo.On("MarkFailed", mock.Anything, bad.ID, mock.Anything).Return(nil)
		outboxRepo.On("MarkSent", mock.Anything, good.ID).Return(nil)

		mailer := new(mocks.Mailer)
		mailer.On("Send", mock.Anything, "bounce@example.com", mock.Anything, mock.Anything).Return(errors.New("mailbox full"))
		mailer.On("Send", mock.Anything, "sam@example.com", mock.Anything, mock.Anything).Return(nil)

		n := newWorker(outboxRepo, mailer).ProcessBatch(ctx)

		assert.Equal(t, 2, n)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("edited record gets the update subject", func(t *testing.T) {
		d := pendingDelivery("sam@example.com")
		d.EventType = domain.EventEditedRecord

		outboxRepo := new(mocks.OutboxRepository)
		outboxRepo.On("ListPending", mock.Anything, 20).Return([]domain.PendingDelivery{d}, nil)
		outboxRepo.On("MarkSent", mock.Anything, d.ID).Return(nil)

		mailer := new(mocks.Mailer)
		mailer.On("Send", mock.Anything, mock.Anything, "Change updated: Enabled new rate limiter", mock.Anything).Return(nil)

		newWorker(outboxRepo, mailer).ProcessBatch(ctx)

		mailer.AssertExpectations(t)
	})
}
