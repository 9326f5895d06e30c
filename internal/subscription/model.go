package subscription

import "time"

type Status string
type Source string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"

	SourceApp      Source = "app"
	SourceConsole  Source = "console"
	SourceWhatsApp Source = "whatsapp"
)

// Subscription is a member's claim to gym access for a time window. At most
// one ACTIVE subscription exists per (user, gym) pair at any time.
type Subscription struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	GymID      int       `db:"gym_id" json:"gym_id"`
	PlanID     int       `db:"plan_id" json:"plan_id"`
	Status     Status    `db:"status" json:"status"`
	Source     Source    `db:"source" json:"source"`
	AccessCode string    `db:"access_code" json:"access_code"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GrantsAccess reports whether the subscription admits the member at the given
// moment. end_date is the source of truth: a stale ACTIVE row past its window
// never grants access.
func (s *Subscription) GrantsAccess(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.EndDate)
}
