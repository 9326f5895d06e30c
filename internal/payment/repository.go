package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `id, subscription_id, amount_cents, status, method,
	gateway_order_id, gateway_payment_id, gateway_signature, settlement_id,
	created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ResolveForConfirmation finds the payment a gateway confirmation refers to.
// The resolution order is a documented contract: exact gateway order id first,
// then gateway payment id, then the most recent PENDING payment of the hinted
// subscription. Anything still unresolved is ErrPaymentNotFound.
func (r *PostgresRepository) ResolveForConfirmation(ctx context.Context, orderID, paymentID string, subscriptionHint int) (*Payment, error) {
	if orderID != "" {
		p, err := r.findByColumn(ctx, "gateway_order_id", orderID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}
	}

	if paymentID != "" {
		p, err := r.findByColumn(ctx, "gateway_payment_id", paymentID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}
	}

	if subscriptionHint > 0 {
		p := &Payment{}
		err := r.db.GetContext(ctx, p, `
			SELECT `+paymentColumns+`
			FROM payments
			WHERE subscription_id = $1 AND status = 'pending'
			ORDER BY created_at DESC
			LIMIT 1
		`, subscriptionHint)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	return nil, ErrPaymentNotFound
}

func (r *PostgresRepository) findByColumn(ctx context.Context, column, value string) (*Payment, error) {
	p := &Payment{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE `+column+` = $1
	`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkFailed moves a PENDING payment to FAILED. A payment that already reached
// a terminal state is left untouched.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'failed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	return err
}
