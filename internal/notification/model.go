package notification

import "time"

// Event names emitted by the lifecycle and settlement services.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionActivated = "subscription.activated"
	EventPaymentInitiated      = "payment.initiated"
	EventPaymentCompleted      = "payment.completed"
	EventPaymentFailed         = "payment.failed"
	EventMemberJoined          = "member.joined"
	EventMemberAdded           = "member.added"
	EventAccessCodeIssued      = "access_code.issued"
	EventSettlementCreated     = "settlement.created"
	EventSettlementProcessed   = "settlement.processed"
)

type Notification struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Event     string    `db:"event" json:"event"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
