package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return sqlx.NewDb(conn, "sqlmock"), mock
}

func TestExists(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("A1B2C3D4").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := Exists(context.Background(), conn, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE access_code = $1)`, "A1B2C3D4")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists_NoRowsIsFalse(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnError(sql.ErrNoRows)

	exists, err := Exists(context.Background(), conn, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE access_code = $1)`, "ZZZZZZZZ")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExists_InsideTransaction(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(3, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	tx, err := conn.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	exists, err := Exists(context.Background(), tx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = $1 AND gym_id = $2 AND status = 'active')`, 3, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}
