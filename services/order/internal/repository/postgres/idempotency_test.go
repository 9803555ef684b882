package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelis/shopworks/pkg/database"
)

func setupIdemStore(t *testing.T) (*IdempotencyStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewIdempotencyStore(mock), mock
}

const testEventID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

func TestIdempotencyStore_Contains_True(t *testing.T) {
	store, mock := setupIdemStore(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testEventID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	seen, err := store.Contains(context.Background(), testEventID)
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_Contains_False(t *testing.T) {
	store, mock := setupIdemStore(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testEventID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	seen, err := store.Contains(context.Background(), testEventID)
	require.NoError(t, err)
	assert.False(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_Contains_Error(t *testing.T) {
	store, mock := setupIdemStore(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(testEventID).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Contains(context.Background(), testEventID)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_Add(t *testing.T) {
	store, mock := setupIdemStore(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs(testEventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Add(context.Background(), testEventID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyStore_Add_DuplicateIsNoop(t *testing.T) {
	store, mock := setupIdemStore(t)
	defer mock.Close()

	// ON CONFLICT DO NOTHING reports zero rows affected for duplicates.
	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs(testEventID).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := store.Add(context.Background(), testEventID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
