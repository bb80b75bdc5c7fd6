package checkout

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	return newTestQueries(t)
}

func TestUpdateStatus(t *testing.T) {
	q, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectStatusForUpdate)).
		WithArgs("order-a").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec(regexp.QuoteMeta(updateStatus)).
		WithArgs("processing", sqlmock.AnyArg(), sqlmock.AnyArg(), "order-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := UpdateStatus(context.Background(), q.DB, "order-a", "processing")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusBackwardsRejected(t *testing.T) {
	q, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectStatusForUpdate)).
		WithArgs("order-a").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectRollback()

	err := UpdateStatus(context.Background(), q.DB, "order-a", "processing")

	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	q, mock := newTestDB(t)

	err := UpdateStatus(context.Background(), q.DB, "order-a", "shipped")

	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusOrderMissing(t *testing.T) {
	q, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectStatusForUpdate)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	err := UpdateStatus(context.Background(), q.DB, "ghost", "processing")

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStale(t *testing.T) {
	q, mock := newTestDB(t)

	mock.ExpectExec(regexp.QuoteMeta(cancelStalePending)).
		WithArgs("cancelled", sqlmock.AnyArg(), sqlmock.AnyArg(), "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := CancelStale(context.Background(), q.DB, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
