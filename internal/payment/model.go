package payment

import (
	"strconv"
	"time"
)

type Status string
type Method string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"

	MethodGateway Method = "gateway"
	MethodConsole Method = "console"
	MethodManual  Method = "manual"
)

// Payment is one monetary attempt tied to exactly one subscription.
// settlement_id stays NULL until the payment is claimed by a settlement,
// and is never reassigned afterwards.
// FormatAmount renders minor units as a plain decimal string ("1000.00").
// Every notification and invoice that shows money goes through this.
func FormatAmount(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

type Payment struct {
	ID               int       `db:"id" json:"id"`
	SubscriptionID   int       `db:"subscription_id" json:"subscription_id"`
	AmountCents      int64     `db:"amount_cents" json:"amount_cents"`
	Status           Status    `db:"status" json:"status"`
	Method           Method    `db:"method" json:"method"`
	GatewayOrderID   *string   `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string   `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewaySignature *string   `db:"gateway_signature" json:"-"`
	SettlementID     *int      `db:"settlement_id" json:"settlement_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
