package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
)

func TestPaymentOrderRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewPaymentOrderRepository(db)

	mock.ExpectExec("INSERT INTO payment_orders").
		WithArgs(sqlmock.AnyArg(), "order_gw", "u1", "c1", "bundle", sqlmock.AnyArg(), 499.0, int64(49900), "INR", "CREATED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	order := &models.PaymentOrder{
		GatewayOrderID: "order_gw",
		UserID:         "u1",
		CategoryID:     "c1",
		PurchaseKind:   models.PurchaseKindBundle,
		TopicIDs:       pq.StringArray{"t1", "t2"},
		Amount:         499,
		AmountMinor:    49900,
		Currency:       "INR",
		Status:         models.OrderStatusCreated,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOrderRepositoryFindByGatewayOrderID(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewPaymentOrderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "gateway_order_id", "user_id", "category_id", "purchase_kind", "topic_ids", "amount", "amount_minor", "currency", "status", "created_at", "paid_at"}).
		AddRow("o1", "order_gw", "u1", "c1", "bundle", pq.StringArray{"t1"}, 499.0, int64(49900), "INR", "CREATED", time.Now(), nil)
	mock.ExpectQuery("SELECT id, gateway_order_id").
		WithArgs("order_gw").
		WillReturnRows(rows)

	order, err := repo.FindByGatewayOrderID(context.Background(), "order_gw")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOrderRepositoryMarkPaid(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewPaymentOrderRepository(db)

	paidAt := time.Now().UTC()
	mock.ExpectExec("UPDATE payment_orders SET status").
		WithArgs(models.OrderStatusPaid, paidAt, "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPaid(context.Background(), "o1", paidAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentOrderRepositoryMarkFailed(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewPaymentOrderRepository(db)

	mock.ExpectExec("UPDATE payment_orders SET status").
		WithArgs(models.OrderStatusFailed, "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "o1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
