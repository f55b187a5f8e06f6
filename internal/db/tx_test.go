package db

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestWithTx_Commit(t *testing.T) {
	database, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err := WithTx(database, func(tx *sqlx.Tx) error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	database, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	expected := errors.New("boom")
	err := WithTx(database, func(tx *sqlx.Tx) error {
		return expected
	})

	assert.ErrorIs(t, err, expected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	database, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := WithTx(database, func(tx *sqlx.Tx) error {
		panic("test panic")
	})

	assert.ErrorContains(t, err, "test panic")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginFails(t *testing.T) {
	database, mock := setupMockDB(t)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	err := WithTx(database, func(tx *sqlx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})

	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}
