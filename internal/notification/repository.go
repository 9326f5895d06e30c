package notification

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int, event, title, body string) (*Notification, error) {
	n := &Notification{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (user_id, event, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, event, title, body, created_at
	`, userID, event, title, body).StructScan(n)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	notifications := []Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, event, title, body, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return notifications, err
}
