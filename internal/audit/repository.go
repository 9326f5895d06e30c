package audit

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Append(ctx context.Context, action, entity string, entityID, actorID, gymID int, details map[string]string) error
	ListByGym(ctx context.Context, gymID, limit, offset int) ([]Entry, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append writes one audit row. The table is append-only: no update or delete
// path exists anywhere in the codebase.
func (r *PostgresRepository) Append(ctx context.Context, action, entity string, entityID, actorID, gymID int, details map[string]string) error {
	if details == nil {
		details = map[string]string{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	var gym interface{}
	if gymID > 0 {
		gym = gymID
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (action, entity, entity_id, actor_id, gym_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, action, entity, entityID, actorID, gym, detailsJSON)
	return err
}

func (r *PostgresRepository) ListByGym(ctx context.Context, gymID, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, action, entity, entity_id, actor_id, gym_id, details, created_at
		FROM audit_logs
		WHERE gym_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, gymID, limit, offset)
	return entries, err
}
