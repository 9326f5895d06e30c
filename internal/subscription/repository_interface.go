package subscription

import (
	"context"
	"time"

	"fitpass/internal/payment"
)

// CreateParams carries everything needed to persist a subscription and its
// initial payment in one transaction.
type CreateParams struct {
	UserID      int
	GymID       int
	PlanID      int
	Source      Source
	AccessCode  string
	StartDate   time.Time
	EndDate     time.Time
	AmountCents int64
}

// OrderFunc registers a gateway order for the subscription being created.
// It runs inside the creating transaction: an error rolls everything back.
type OrderFunc func(subscriptionID int, amountCents int64) (orderID string, err error)

// ActivationUpdate is the state written when a payment confirmation wins the
// completion race.
type ActivationUpdate struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	StartDate        time.Time
	EndDate          time.Time
}

type Repository interface {
	// CreatePendingWithPayment persists Subscription(PENDING) and
	// Payment(PENDING, gateway) atomically, calling createOrder before commit.
	CreatePendingWithPayment(ctx context.Context, p CreateParams, createOrder OrderFunc) (*Subscription, *payment.Payment, error)

	// CreateActivePaid persists Subscription(ACTIVE) and
	// Payment(COMPLETED, console) atomically. Console flow: no gateway order.
	CreateActivePaid(ctx context.Context, p CreateParams) (*Subscription, *payment.Payment, error)

	// ActivateWithPayment completes the payment and activates the subscription
	// in one transaction. The payment update is a compare-and-set on
	// status=pending; completed=false means another confirmation won the race
	// and nothing was changed.
	ActivateWithPayment(ctx context.Context, subscriptionID, paymentID int, upd ActivationUpdate) (completed bool, err error)

	// ManualActivate completes any pending payments with the given method and
	// activates the subscription, atomically.
	ManualActivate(ctx context.Context, subscriptionID int, method payment.Method, startDate, endDate time.Time) error

	GetByID(ctx context.Context, id int) (*Subscription, error)
	HasActiveForUserAndGym(ctx context.Context, userID, gymID int) (bool, error)
	AccessCodeExists(ctx context.Context, code string) (bool, error)
	ListByUser(ctx context.Context, userID int) ([]Subscription, error)
}
