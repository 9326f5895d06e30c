package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"fitpass/internal/audit"
	"fitpass/internal/invoice"
	"fitpass/internal/logger"
	"fitpass/internal/notification"
	"fitpass/internal/payment"
)

// NotificationWorker renders an event template and persists a Notification
// row. Best-effort: exhausted jobs are logged and dropped.
type NotificationWorker struct {
	repo notification.Repository
}

func NewNotificationWorker(repo notification.Repository) *NotificationWorker {
	return &NotificationWorker{repo: repo}
}

func (w *NotificationWorker) Queue() string      { return QueueNotification }
func (w *NotificationWorker) RetainFailed() bool { return false }

func (w *NotificationWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job NotificationJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("bad notification job: %w", err)
	}

	title, body := notification.Render(job.Event, job.Data)
	if _, err := w.repo.Create(ctx, job.UserID, job.Event, title, body); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	logger.Debugf("Notification stored: %s for user %d", job.Event, job.UserID)
	return nil
}

// AuditWorker appends audit-trail rows. Exhausted jobs are retained on the
// failed list for operator review rather than dropped.
type AuditWorker struct {
	repo audit.Repository
}

func NewAuditWorker(repo audit.Repository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Queue() string      { return QueueAudit }
func (w *AuditWorker) RetainFailed() bool { return true }

func (w *AuditWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job AuditJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("bad audit job: %w", err)
	}

	return w.repo.Append(ctx, job.Action, job.Entity, job.EntityID, job.ActorID, job.GymID, job.Details)
}

// InvoiceWorker renders and uploads the invoice for a completed payment, then
// chains an access-code notification to the member.
type InvoiceWorker struct {
	uploader invoice.Uploader
	enqueuer Enqueuer
}

func NewInvoiceWorker(uploader invoice.Uploader, enqueuer Enqueuer) *InvoiceWorker {
	return &InvoiceWorker{uploader: uploader, enqueuer: enqueuer}
}

func (w *InvoiceWorker) Queue() string      { return QueueInvoice }
func (w *InvoiceWorker) RetainFailed() bool { return true }

func (w *InvoiceWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job InvoiceJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("bad invoice job: %w", err)
	}

	inv := invoice.Invoice{
		SubscriptionID: job.SubscriptionID,
		PaymentID:      job.PaymentID,
		GymName:        job.GymName,
		PlanName:       job.PlanName,
		AmountCents:    job.AmountCents,
		AccessCode:     job.AccessCode,
		IssuedAt:       job.IssuedAt,
	}

	if err := w.uploader.Upload(ctx, inv.Key(), invoice.Render(inv)); err != nil {
		return fmt.Errorf("failed to upload invoice: %w", err)
	}

	// Chained best-effort: invoice made it, the code notification may not.
	if err := w.enqueuer.Enqueue(ctx, QueueNotification, NotificationJob{
		Event:  notification.EventAccessCodeIssued,
		UserID: job.UserID,
		Data: map[string]string{
			"access_code": job.AccessCode,
			"gym":         job.GymName,
		},
	}); err != nil {
		logger.Errorf("Failed to chain access-code notification for payment %d: %v", job.PaymentID, err)
	}

	logger.Infof("Invoice uploaded for payment %d (amount %s)", job.PaymentID, payment.FormatAmount(job.AmountCents))
	return nil
}
