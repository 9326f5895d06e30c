package subscription

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"fitpass/internal/payment"
)

func setupSubscriptionMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func subscriptionRows(id int, status Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "gym_id", "plan_id", "status", "source",
		"access_code", "start_date", "end_date", "created_at", "updated_at",
	}).AddRow(id, 1, 2, 10, string(status), "app", "A1B2C3D4", now, now.AddDate(0, 1, 0), now, now)
}

func paymentRows(id, subscriptionID int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "subscription_id", "amount_cents", "status", "method",
		"gateway_order_id", "gateway_payment_id", "gateway_signature", "settlement_id",
		"created_at", "updated_at",
	}).AddRow(id, subscriptionID, 100000, "pending", "gateway", nil, nil, nil, nil, now, now)
}

func TestCreatePendingWithPayment(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Now()
	params := CreateParams{
		UserID: 1, GymID: 2, PlanID: 10,
		Source: SourceApp, AccessCode: "A1B2C3D4",
		StartDate: now, EndDate: now.AddDate(0, 1, 0),
		AmountCents: 100000,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(subscriptionRows(42, StatusPending))
	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(42, int64(100000)).
		WillReturnRows(paymentRows(5, 42))
	mock.ExpectQuery("UPDATE payments").
		WithArgs("order_abc", 5).
		WillReturnRows(paymentRows(5, 42))
	mock.ExpectCommit()

	sub, pay, err := repo.CreatePendingWithPayment(context.Background(), params, func(subscriptionID int, amountCents int64) (string, error) {
		require.Equal(t, 42, subscriptionID)
		require.Equal(t, int64(100000), amountCents)
		return "order_abc", nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, sub.ID)
	require.Equal(t, 5, pay.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingWithPayment_GatewayFailureRollsBack(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO subscriptions").
		WillReturnRows(subscriptionRows(42, StatusPending))
	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(paymentRows(5, 42))
	mock.ExpectRollback()

	sub, pay, err := repo.CreatePendingWithPayment(context.Background(), CreateParams{UserID: 1, GymID: 2, AmountCents: 100000}, func(int, int64) (string, error) {
		return "", payment.ErrProviderUnavailable
	})
	require.ErrorIs(t, err, payment.ErrProviderUnavailable)
	require.Nil(t, sub)
	require.Nil(t, pay)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingWithPayment_DuplicateActive(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, _, err := repo.CreatePendingWithPayment(context.Background(), CreateParams{UserID: 1, GymID: 2}, func(int, int64) (string, error) {
		t.Fatal("order must not be created for a duplicate-active user")
		return "", nil
	})
	require.ErrorIs(t, err, ErrAlreadyActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateWithPayment_WinsRace(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	completed, err := repo.ActivateWithPayment(context.Background(), 42, 5, ActivationUpdate{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		GatewaySignature: "sig",
		StartDate:        now,
		EndDate:          now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.True(t, completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateWithPayment_LosesRace(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	// The compare-and-set hits zero rows: another confirmation already
	// completed this payment. The subscription must not be touched.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	completed, err := repo.ActivateWithPayment(context.Background(), 42, 5, ActivationUpdate{})
	require.NoError(t, err)
	require.False(t, completed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManualActivate(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	err := repo.ManualActivate(context.Background(), 42, payment.MethodManual, now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManualActivate_NotFound(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE subscriptions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ManualActivate(context.Background(), 404, payment.MethodManual, time.Now(), time.Now())
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery("SELECT").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestHasActiveForUserAndGym(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasActiveForUserAndGym(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, active)
}
