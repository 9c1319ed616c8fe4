package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kelasku/kelasku-api/internal/models"
)

// PaymentOrderRepository handles persistence of payment orders.
type PaymentOrderRepository struct {
	db *sqlx.DB
}

// NewPaymentOrderRepository constructs the repository.
func NewPaymentOrderRepository(db *sqlx.DB) *PaymentOrderRepository {
	return &PaymentOrderRepository{db: db}
}

// Create persists a new payment order.
func (r *PaymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payment_orders (id, gateway_order_id, user_id, category_id, purchase_kind, topic_ids, amount, amount_minor, currency, status, created_at)
        VALUES (:id, :gateway_order_id, :user_id, :category_id, :purchase_kind, :topic_ids, :amount, :amount_minor, :currency, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create payment order: %w", err)
	}
	return nil
}

// FindByID returns a payment order by its internal ID.
func (r *PaymentOrderRepository) FindByID(ctx context.Context, id string) (*models.PaymentOrder, error) {
	const query = `SELECT id, gateway_order_id, user_id, category_id, purchase_kind, topic_ids, amount, amount_minor, currency, status, created_at, paid_at
        FROM payment_orders WHERE id = $1`
	var order models.PaymentOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByGatewayOrderID returns the order the gateway callback references.
func (r *PaymentOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	const query = `SELECT id, gateway_order_id, user_id, category_id, purchase_kind, topic_ids, amount, amount_minor, currency, status, created_at, paid_at
        FROM payment_orders WHERE gateway_order_id = $1`
	var order models.PaymentOrder
	if err := r.db.GetContext(ctx, &order, query, gatewayOrderID); err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid transitions the order to PAID with the given timestamp.
func (r *PaymentOrderRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	const query = `UPDATE payment_orders SET status = $1, paid_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, models.OrderStatusPaid, paidAt, id); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

// MarkFailed transitions the order to FAILED.
func (r *PaymentOrderRepository) MarkFailed(ctx context.Context, id string) error {
	const query = `UPDATE payment_orders SET status = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, models.OrderStatusFailed, id); err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	return nil
}
