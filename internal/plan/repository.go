package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, gymID int, name string, priceCents int64, durationValue int, durationUnit DurationUnit) (*Plan, error) {
	p := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO plans (gym_id, name, price_cents, duration_value, duration_unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, gym_id, name, price_cents, duration_value, duration_unit, is_active, created_at, updated_at
	`, gymID, name, priceCents, durationValue, durationUnit).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, `
		SELECT id, gym_id, name, price_cents, duration_value, duration_unit, is_active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByGym(ctx context.Context, gymID int) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, gym_id, name, price_cents, duration_value, duration_unit, is_active, created_at, updated_at
		FROM plans
		WHERE gym_id = $1
		ORDER BY created_at DESC
	`, gymID)
	return plans, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int, priceCents int64, isActive bool) (*Plan, error) {
	p := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE plans
		SET price_cents = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, gym_id, name, price_cents, duration_value, duration_unit, is_active, created_at, updated_at
	`, id, priceCents, isActive).StructScan(p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
