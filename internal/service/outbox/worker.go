package outbox

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"ops-journal/internal/domain"
	"ops-journal/internal/repository"
	"ops-journal/internal/service/audit"
	"ops-journal/internal/service/email"
)

var bodyTmpl = template.Must(template.New("notification").Parse(`
<div style="font-family: sans-serif; max-width: 600px;">
	<h2>{{.Heading}}</h2>
	<p><strong>{{.RecordTitle}}</strong></p>
	<p>Node: {{.NodeName}} <span style="color: #888;">({{.NodePath}})</span></p>
	<p><a href="{{.Link}}">View the change record</a></p>
	<p style="color: #888; font-size: 12px;">You are receiving this because you subscribed to {{.NodeName}}.</p>
</div>`))

type bodyData struct {
	Heading     string
	RecordTitle string
	NodeName    string
	NodePath    string
	Link        string
}

// Worker drains the notification outbox: it polls for pending rows, sends
// each one by email and moves the row to a terminal status. A delivery
// failure marks only that row failed, the rest of the batch continues.
type Worker struct {
	outboxRepo repository.OutboxRepository
	mailer     email.Mailer
	auditSvc   audit.Service
	interval   time.Duration
	batchSize  int
	baseURL    string
}

func NewWorker(outboxRepo repository.OutboxRepository, mailer email.Mailer, auditSvc audit.Service, interval time.Duration, batchSize int, baseURL string) *Worker {
	return &Worker{
		outboxRepo: outboxRepo,
		mailer:     mailer,
		auditSvc:   auditSvc,
		interval:   interval,
		batchSize:  batchSize,
		baseURL:    baseURL,
	}
}

// Run polls until the context is cancelled. Meant to run on a single
// instance; concurrent workers would double-send pending rows.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("outbox worker started (interval %s, batch %d)", w.interval, w.batchSize)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.ProcessBatch(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch delivers up to batchSize pending entries and returns how many
// were attempted.
func (w *Worker) ProcessBatch(ctx context.Context) int {
	pending, err := w.outboxRepo.ListPending(ctx, w.batchSize)
	if err != nil {
		log.Printf("outbox worker: list pending: %v", err)
		return 0
	}

	for _, delivery := range pending {
		w.deliver(ctx, delivery)
	}
	return len(pending)
}

func (w *Worker) deliver(ctx context.Context, d domain.PendingDelivery) {
	subject, body, err := w.render(d)
	if err == nil {
		err = w.mailer.Send(ctx, d.UserEmail, subject, body)
	}

	if err != nil {
		log.Printf("outbox worker: deliver %s to %s: %v", d.ID, d.UserEmail, err)
		if markErr := w.outboxRepo.MarkFailed(ctx, d.ID, err.Error()); markErr != nil {
			log.Printf("outbox worker: mark failed %s: %v", d.ID, markErr)
			return
		}
		w.auditSvc.Record(ctx, domain.AuditNotificationFailure, nil, map[string]any{
			"outbox_id": d.ID.String(),
			"record_id": d.RecordID.String(),
			"error":     err.Error(),
		})
		return
	}

	if err := w.outboxRepo.MarkSent(ctx, d.ID); err != nil {
		log.Printf("outbox worker: mark sent %s: %v", d.ID, err)
		return
	}
	w.auditSvc.Record(ctx, domain.AuditNotificationSent, &d.UserID, map[string]any{
		"outbox_id": d.ID.String(),
		"record_id": d.RecordID.String(),
	})
}

func (w *Worker) render(d domain.PendingDelivery) (string, string, error) {
	var subject, heading string
	switch d.EventType {
	case domain.EventEditedRecord:
		subject = "Change updated: " + d.RecordTitle
		heading = "A change record you follow was updated"
	default:
		subject = "New change: " + d.RecordTitle
		heading = "A new change record was published"
	}

	data := bodyData{
		Heading:     heading,
		RecordTitle: d.RecordTitle,
		NodeName:    d.NodeName,
		NodePath:    d.NodePath,
		Link:        fmt.Sprintf("%s/records/%s", w.baseURL, d.RecordID),
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render notification body: %w", err)
	}
	return subject, buf.String(), nil
}
