package audit

import "time"

// Actions recorded by console/admin operations.
const (
	ActionActivateSubscription = "ACTIVATE_SUBSCRIPTION"
	ActionCreateSubscription   = "CREATE_SUBSCRIPTION"
	ActionCreateSettlement     = "CREATE_SETTLEMENT"
	ActionProcessSettlement    = "PROCESS_SETTLEMENT"
)

type Entry struct {
	ID        int       `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	Entity    string    `db:"entity" json:"entity"`
	EntityID  int       `db:"entity_id" json:"entity_id"`
	ActorID   int       `db:"actor_id" json:"actor_id"`
	GymID     *int      `db:"gym_id" json:"gym_id,omitempty"`
	Details   []byte    `db:"details" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
