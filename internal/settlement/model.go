package settlement

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
)

type Settlement struct {
	ID            int       `db:"id" json:"id"`
	GymID         int       `db:"gym_id" json:"gym_id"`
	AmountCents   int64     `db:"amount_cents" json:"amount_cents"`
	// PaymentCount is how many payments the creating claim swept in.
	// Populated by CreateForGym only; not a settlements column.
	PaymentCount  int       `db:"-" json:"payment_count,omitempty"`
	Status        Status    `db:"status" json:"status"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// GymSummary is one row of the unsettled-payments report: everything a
// completed gateway payment has earned for a gym that no settlement has
// claimed yet.
type GymSummary struct {
	GymID       int    `db:"gym_id" json:"gym_id"`
	GymName     string `db:"gym_name" json:"gym_name"`
	OwnerName   string `db:"owner_name" json:"owner_name"`
	AmountCents int64  `db:"amount_cents" json:"amount_cents"`
	Count       int    `db:"count" json:"count"`
}

type ProcessRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Notes         string `json:"notes"`
}
