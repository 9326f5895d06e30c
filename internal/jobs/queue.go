package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fitpass/internal/logger"
)

// Queue names, one redis list per job family. Delivery is at-least-once;
// ordering across families is not guaranteed.
const (
	QueueNotification = "jobs:notification"
	QueueAudit        = "jobs:audit"
	QueueInvoice      = "jobs:invoice"
)

// Enqueuer is what state-transition code sees: a single fire-and-forget
// submission point for side-effect jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, payload interface{}) error
}

// NotificationJob renders a template for the event and persists a
// Notification row for the user. Best-effort: dropped after retries.
type NotificationJob struct {
	Event  string            `json:"event"`
	UserID int               `json:"user_id"`
	Data   map[string]string `json:"data,omitempty"`
}

// AuditJob appends one audit-trail row. Retained on exhausted retries.
type AuditJob struct {
	Action   string            `json:"action"`
	Entity   string            `json:"entity"`
	EntityID int               `json:"entity_id"`
	ActorID  int               `json:"actor_id"`
	GymID    int               `json:"gym_id,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// InvoiceJob renders and uploads an invoice for a completed payment, then
// chains an access-code notification to the member.
type InvoiceJob struct {
	SubscriptionID int       `json:"subscription_id"`
	PaymentID      int       `json:"payment_id"`
	UserID         int       `json:"user_id"`
	GymName        string    `json:"gym_name"`
	PlanName       string    `json:"plan_name"`
	AmountCents    int64     `json:"amount_cents"`
	AccessCode     string    `json:"access_code"`
	IssuedAt       time.Time `json:"issued_at"`
}

type Envelope struct {
	Queue   string          `json:"queue"`
	Payload json.RawMessage `json:"payload"`
	Tries   int             `json:"tries"`
	Created time.Time       `json:"created"`
}

type Queue struct {
	redis *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

func (q *Queue) Enqueue(ctx context.Context, queue string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	env := Envelope{
		Queue:   queue,
		Payload: data,
		Tries:   0,
		Created: time.Now(),
	}

	envData, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if err := q.redis.LPush(ctx, queue, envData).Err(); err != nil {
		logger.Errorf("Failed to enqueue job on %s: %v", queue, err)
		return err
	}

	return nil
}

func (q *Queue) Length(ctx context.Context, queue string) int64 {
	length, _ := q.redis.LLen(ctx, queue).Result()
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}
