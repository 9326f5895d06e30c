package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fitpass/internal/db"
	"fitpass/internal/payment"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = `id, user_id, gym_id, plan_id, status, source,
	access_code, start_date, end_date, created_at, updated_at`

const paymentColumns = `id, subscription_id, amount_cents, status, method,
	gateway_order_id, gateway_payment_id, gateway_signature, settlement_id,
	created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePendingWithPayment(ctx context.Context, p CreateParams, createOrder OrderFunc) (*Subscription, *payment.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	sub, err := insertSubscription(ctx, tx, p, StatusPending)
	if err != nil {
		return nil, nil, err
	}

	pay := &payment.Payment{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO payments (subscription_id, amount_cents, status, method)
		VALUES ($1, $2, 'pending', 'gateway')
		RETURNING `+paymentColumns+`
	`, sub.ID, p.AmountCents).StructScan(pay)
	if err != nil {
		return nil, nil, err
	}

	// Gateway order creation happens before commit so a provider failure
	// leaves no partially-created subscription behind.
	orderID, err := createOrder(sub.ID, p.AmountCents)
	if err != nil {
		return nil, nil, err
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE payments
		SET gateway_order_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+paymentColumns+`
	`, orderID, pay.ID).StructScan(pay)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return sub, pay, nil
}

func (r *PostgresRepository) CreateActivePaid(ctx context.Context, p CreateParams) (*Subscription, *payment.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	sub, err := insertSubscription(ctx, tx, p, StatusActive)
	if err != nil {
		return nil, nil, err
	}

	pay := &payment.Payment{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO payments (subscription_id, amount_cents, status, method)
		VALUES ($1, $2, 'completed', 'console')
		RETURNING `+paymentColumns+`
	`, sub.ID, p.AmountCents).StructScan(pay)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return sub, pay, nil
}

func insertSubscription(ctx context.Context, tx *sqlx.Tx, p CreateParams, status Status) (*Subscription, error) {
	// The duplicate-active check lives inside the transaction that creates
	// the row; the partial unique index is the backstop for racing creates.
	exists, err := db.Exists(ctx, tx, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND gym_id = $2 AND status = 'active'
		)
	`, p.UserID, p.GymID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyActive
	}

	sub := &Subscription{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (user_id, gym_id, plan_id, status, source, access_code, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+subscriptionColumns+`
	`, p.UserID, p.GymID, p.PlanID, status, p.Source, p.AccessCode, p.StartDate, p.EndDate).StructScan(sub)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *PostgresRepository) ActivateWithPayment(ctx context.Context, subscriptionID, paymentID int, upd ActivationUpdate) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Compare-and-set on the payment row: concurrent confirmations serialize
	// here, and the loser observes zero affected rows.
	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = 'completed',
		    gateway_order_id = COALESCE(NULLIF($2, ''), gateway_order_id),
		    gateway_payment_id = COALESCE(NULLIF($3, ''), gateway_payment_id),
		    gateway_signature = COALESCE(NULLIF($4, ''), gateway_signature),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, paymentID, upd.GatewayOrderID, upd.GatewayPaymentID, upd.GatewaySignature)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'active', start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1
	`, subscriptionID, upd.StartDate, upd.EndDate)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *PostgresRepository) ManualActivate(ctx context.Context, subscriptionID int, method payment.Method, startDate, endDate time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE payments
		SET status = 'completed', method = $2, updated_at = NOW()
		WHERE subscription_id = $1 AND status = 'pending'
	`, subscriptionID, method)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'active', start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1
	`, subscriptionID, startDate, endDate)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *PostgresRepository) HasActiveForUserAndGym(ctx context.Context, userID, gymID int) (bool, error) {
	exists, err := db.Exists(ctx, r.db, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND gym_id = $2 AND status = 'active'
		)
	`, userID, gymID)
	if err != nil {
		return false, fmt.Errorf("failed to check active subscription: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) AccessCodeExists(ctx context.Context, code string) (bool, error) {
	return db.Exists(ctx, r.db, `
		SELECT EXISTS(SELECT 1 FROM subscriptions WHERE access_code = $1)
	`, code)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Subscription, error) {
	subs := []Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return subs, err
}
