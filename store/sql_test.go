// ABOUTME: SQL backend tests against a mocked driver
// ABOUTME: Checks missing rows map to ErrNotFound and driver errors propagate
package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendMissingRow(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("close_data").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = NewSQLiteBackend(database).Get(context.Background(), "close_data")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteBackendReadError(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs("close_data").
		WillReturnError(errors.New("disk I/O error"))

	g := NewGateway(NewSQLiteBackend(database), "", nil)
	_, err = g.Read(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendUpsert(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO closex_kv`)).
		WithArgs("close_data", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM closex_kv WHERE key = $1`)).
		WithArgs("close_data").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{}`)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM closex_kv WHERE key = $1`)).
		WithArgs("close_data").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	b := NewPostgresBackend(database)
	require.NoError(t, b.Set(ctx, "close_data", []byte(`{}`)))
	value, err := b.Get(ctx, "close_data")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), value)
	require.NoError(t, b.Delete(ctx, "close_data"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLWriteErrorWrapsErrStorage(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv`)).
		WithArgs("close_data", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	g := NewGateway(NewSQLiteBackend(database), "", nil)
	err = g.Write(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "database is locked")
}
