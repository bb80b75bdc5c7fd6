package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeline/storeline-golang/internal/auth"
)

type sentMail struct {
	to      string
	subject string
	html    string
}

type fakeNotifier struct {
	err  error
	sent chan sentMail
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, html string) error {
	f.sent <- sentMail{to: to, subject: subject, html: html}
	return f.err
}

func newTestCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock, *fakeNotifier) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fake := &fakeNotifier{sent: make(chan sentMail, 1)}
	co := NewCoordinator(db, fake, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return co, mock, fake
}

func buyer() auth.Identity {
	return auth.Identity{ID: 42, Email: "buyer@example.com", Role: "customer"}
}

func reserveQueryPattern(productCount int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", productCount), ",")
	return regexp.QuoteMeta(strings.Replace(selectForReserve, "%s", placeholders, 1))
}

func TestPlaceOrderSuccess(t *testing.T) {
	co, mock, fake := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Gaming Laptop", "10.00", 5))
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WithArgs(3, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WithArgs(sqlmock.AnyArg(), int64(42), "pending", sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderItem)).
		WithArgs(sqlmock.AnyArg(), int64(1), 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	order, items, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 1, Quantity: 3}}, validAddress())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, order.ID, 36)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.Total.Equal(dec("30.00")))
	require.Len(t, items, 1)
	assert.Equal(t, order.ID, items[0].OrderID)
	assert.True(t, items[0].Price.Equal(dec("10.00")))

	select {
	case mail := <-fake.sent:
		assert.Equal(t, "buyer@example.com", mail.to)
		assert.Contains(t, mail.subject, order.ID)
		assert.Contains(t, mail.html, "30.00")
	case <-time.After(2 * time.Second):
		t.Fatal("order confirmation was never sent")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderValidationSkipsStorage(t *testing.T) {
	co, mock, _ := newTestCoordinator(t)

	_, _, err := co.PlaceOrder(context.Background(), buyer(), nil, validAddress())

	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	co, mock, _ := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(99999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}))
	mock.ExpectRollback()

	_, _, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 99999, Quantity: 1}}, validAddress())

	assert.Equal(t, KindProductNotFound, KindOf(err))
	assert.EqualError(t, err, "One or more products not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	co, mock, _ := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Gaming Laptop", "10.00", 2))
	mock.ExpectRollback()

	_, _, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 1, Quantity: 3}}, validAddress())

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.EqualError(t, err, "Insufficient stock for product: Gaming Laptop")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderDuplicateLines(t *testing.T) {
	// Two lines of the same product draw from the same locked stock: 3+3
	// against 5 fails even though each line alone would fit.
	co, mock, _ := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Gaming Laptop", "10.00", 5))
	mock.ExpectRollback()

	_, _, err := co.PlaceOrder(context.Background(),
		buyer(),
		[]RequestedItem{{ProductID: 1, Quantity: 3}, {ProductID: 1, Quantity: 3}},
		validAddress())

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderLockContentionIsConflict(t *testing.T) {
	co, mock, _ := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
	mock.ExpectRollback()

	_, _, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 1, Quantity: 1}}, validAddress())

	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderPersistFailureRollsBack(t *testing.T) {
	co, mock, _ := newTestCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Gaming Laptop", "10.00", 5))
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WithArgs(1, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, _, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 1, Quantity: 1}}, validAddress())

	require.Error(t, err)
	assert.Equal(t, Kind(0), KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderNotificationFailureIsNonFatal(t *testing.T) {
	co, mock, fake := newTestCoordinator(t)
	fake.err = errors.New("ses is down")

	mock.ExpectBegin()
	mock.ExpectQuery(reserveQueryPattern(1)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "Gaming Laptop", "10.00", 5))
	mock.ExpectExec(regexp.QuoteMeta(decrementStock)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderItem)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	order, _, err := co.PlaceOrder(context.Background(),
		buyer(), []RequestedItem{{ProductID: 1, Quantity: 1}}, validAddress())

	require.NoError(t, err)
	require.NotNil(t, order)

	select {
	case <-fake.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never attempted")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
