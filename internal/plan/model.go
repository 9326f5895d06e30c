package plan

import "time"

type DurationUnit string

const (
	UnitDay   DurationUnit = "day"
	UnitWeek  DurationUnit = "week"
	UnitMonth DurationUnit = "month"
	UnitYear  DurationUnit = "year"
)

// Plan is a gym-scoped price/duration template. Price and active-flag edits do
// not retroactively affect subscriptions already created from the plan.
type Plan struct {
	ID            int          `db:"id" json:"id"`
	GymID         int          `db:"gym_id" json:"gym_id"`
	Name          string       `db:"name" json:"name"`
	PriceCents    int64        `db:"price_cents" json:"price_cents"`
	DurationValue int          `db:"duration_value" json:"duration_value"`
	DurationUnit  DurationUnit `db:"duration_unit" json:"duration_unit"`
	IsActive      bool         `db:"is_active" json:"is_active"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// PeriodEnd computes the end of an access window starting at from.
// Month and year durations are calendar-aware: AddDate rolls Jan 31 + 1 month
// over into early March rather than pinning to a fixed 30-day offset.
func (p *Plan) PeriodEnd(from time.Time) time.Time {
	switch p.DurationUnit {
	case UnitDay:
		return from.AddDate(0, 0, p.DurationValue)
	case UnitWeek:
		return from.AddDate(0, 0, 7*p.DurationValue)
	case UnitMonth:
		return from.AddDate(0, p.DurationValue, 0)
	case UnitYear:
		return from.AddDate(p.DurationValue, 0, 0)
	default:
		return from.AddDate(0, 0, p.DurationValue)
	}
}
