package payment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupPaymentMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func paymentRow(id int, orderID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "subscription_id", "amount_cents", "status", "method",
		"gateway_order_id", "gateway_payment_id", "gateway_signature", "settlement_id",
		"created_at", "updated_at",
	}).AddRow(id, 42, 100000, "pending", "gateway", orderID, nil, nil, nil, now, now)
}

func TestResolveForConfirmation_ByOrderID(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("gateway_order_id").
		WithArgs("order_abc").
		WillReturnRows(paymentRow(5, "order_abc"))

	p, err := repo.ResolveForConfirmation(context.Background(), "order_abc", "pay_xyz", 42)
	require.NoError(t, err)
	require.Equal(t, 5, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveForConfirmation_FallsBackToPaymentID(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("gateway_order_id").
		WithArgs("order_abc").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("gateway_payment_id").
		WithArgs("pay_xyz").
		WillReturnRows(paymentRow(5, "order_abc"))

	p, err := repo.ResolveForConfirmation(context.Background(), "order_abc", "pay_xyz", 0)
	require.NoError(t, err)
	require.Equal(t, 5, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveForConfirmation_FallsBackToSubscriptionHint(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("gateway_order_id").
		WithArgs("order_abc").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("gateway_payment_id").
		WithArgs("pay_xyz").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("subscription_id").
		WithArgs(42).
		WillReturnRows(paymentRow(5, ""))

	p, err := repo.ResolveForConfirmation(context.Background(), "order_abc", "pay_xyz", 42)
	require.NoError(t, err)
	require.Equal(t, 5, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveForConfirmation_Unresolved(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("gateway_order_id").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.ResolveForConfirmation(context.Background(), "order_abc", "", 0)
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.Nil(t, p)
}

func TestMarkFailed_OnlyTouchesPending(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectExec("UPDATE payments").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// A completed payment matches zero rows; that is not an error.
	err := repo.MarkFailed(context.Background(), 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("SELECT").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrPaymentNotFound)
}
