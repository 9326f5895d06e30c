package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrGymNotFound = errors.New("gym not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateGym(ctx context.Context, name, location string, ownerID int) (*Gym, error) {
	g := &Gym{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gyms (name, location, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, owner_id, created_at
	`, name, location, ownerID).StructScan(g)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *PostgresRepository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	g := &Gym{}
	err := r.db.GetContext(ctx, g, `
		SELECT id, name, location, owner_id, created_at
		FROM gyms
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *PostgresRepository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	gyms := []Gym{}
	err := r.db.SelectContext(ctx, &gyms, `
		SELECT id, name, location, owner_id, created_at
		FROM gyms
		ORDER BY id
	`)
	return gyms, err
}
