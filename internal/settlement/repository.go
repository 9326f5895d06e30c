package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrNoUnsettledPayments  = errors.New("no unsettled payments for gym")
	ErrAlreadyProcessed     = errors.New("settlement already processed")
	errPaymentsClaimedRaced = errors.New("unsettled payments claimed by a concurrent settlement")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UnsettledSummary(ctx context.Context) ([]GymSummary, error) {
	query := `
		SELECT g.id AS gym_id,
		       g.name AS gym_name,
		       u.name AS owner_name,
		       COALESCE(SUM(p.amount_cents), 0) AS amount_cents,
		       COUNT(p.id) AS count
		FROM payments p
		JOIN subscriptions s ON s.id = p.subscription_id
		JOIN gyms g ON g.id = s.gym_id
		JOIN users u ON u.id = g.owner_id
		WHERE p.status = 'completed'
		  AND p.method <> 'console'
		  AND p.settlement_id IS NULL
		GROUP BY g.id, g.name, u.name
		ORDER BY amount_cents DESC
	`

	summaries := []GymSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, err
	}

	return summaries, nil
}

// CreateForGym claims every completed, non-console, unclaimed payment for
// the gym into a new pending settlement. The claiming UPDATE re-checks
// settlement_id IS NULL, so a payment locked here can never end up in two
// settlements even if two requests race on the same gym.
func (r *PostgresRepository) CreateForGym(ctx context.Context, gymID int) (*Settlement, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	type claimRow struct {
		ID          int   `db:"id"`
		AmountCents int64 `db:"amount_cents"`
	}

	var rows []claimRow
	err = tx.SelectContext(ctx, &rows, `
		SELECT p.id, p.amount_cents
		FROM payments p
		JOIN subscriptions s ON s.id = p.subscription_id
		WHERE s.gym_id = $1
		  AND p.status = 'completed'
		  AND p.method <> 'console'
		  AND p.settlement_id IS NULL
		ORDER BY p.id
		FOR UPDATE OF p
	`, gymID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoUnsettledPayments
	}

	paymentIDs := make([]int, 0, len(rows))
	var total int64
	for _, row := range rows {
		paymentIDs = append(paymentIDs, row.ID)
		total += row.AmountCents
	}

	var stl Settlement
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO settlements (gym_id, amount_cents, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, gym_id, amount_cents, status, transaction_id, notes, created_at, updated_at
	`, gymID, total).StructScan(&stl)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET settlement_id = $1, updated_at = NOW()
		WHERE id = ANY($2) AND settlement_id IS NULL
	`, stl.ID, pq.Array(paymentIDs))
	if err != nil {
		return nil, err
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if claimed != int64(len(paymentIDs)) {
		return nil, fmt.Errorf("%w: claimed %d of %d", errPaymentsClaimedRaced, claimed, len(paymentIDs))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stl.PaymentCount = len(paymentIDs)
	return &stl, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, id int, transactionID, notes string) (*Settlement, error) {
	var stl Settlement
	err := r.db.QueryRowxContext(ctx, `
		UPDATE settlements
		SET status = 'processed', transaction_id = $2, notes = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, gym_id, amount_cents, status, transaction_id, notes, created_at, updated_at
	`, id, transactionID, notes).StructScan(&stl)
	if err == nil {
		return &stl, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Either the settlement does not exist or it is already terminal.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Status == StatusProcessed {
		return nil, ErrAlreadyProcessed
	}
	return nil, ErrSettlementNotFound
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*Settlement, error) {
	var stl Settlement
	err := r.db.GetContext(ctx, &stl, `
		SELECT id, gym_id, amount_cents, status, transaction_id, notes, created_at, updated_at
		FROM settlements
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}

	return &stl, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Settlement, error) {
	settlements := []Settlement{}
	err := r.db.SelectContext(ctx, &settlements, `
		SELECT id, gym_id, amount_cents, status, transaction_id, notes, created_at, updated_at
		FROM settlements
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}

	return settlements, nil
}
