package models

import (
	"time"

	"github.com/lib/pq"
)

// PurchaseKind is the requested mode of a purchase.
type PurchaseKind string

// Supported purchase kinds.
const (
	PurchaseKindFree       PurchaseKind = "free"
	PurchaseKindIndividual PurchaseKind = "individual"
	PurchaseKindBundle     PurchaseKind = "bundle"
)

// OrderStatus is the lifecycle of a payment order.
type OrderStatus string

// Possible order statuses.
const (
	OrderStatusCreated OrderStatus = "CREATED"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// PaymentOrder stores the purchase context needed to complete enrollment
// grants when the gateway callback arrives. Amount is in major currency
// units; AmountMinor is the value sent to the gateway.
type PaymentOrder struct {
	ID             string         `db:"id" json:"id"`
	GatewayOrderID string         `db:"gateway_order_id" json:"gateway_order_id"`
	UserID         string         `db:"user_id" json:"user_id"`
	CategoryID     string         `db:"category_id" json:"category_id"`
	PurchaseKind   PurchaseKind   `db:"purchase_kind" json:"purchase_kind"`
	TopicIDs       pq.StringArray `db:"topic_ids" json:"topic_ids"`
	Amount         float64        `db:"amount" json:"amount"`
	AmountMinor    int64          `db:"amount_minor" json:"amount_minor"`
	Currency       string         `db:"currency" json:"currency"`
	Status         OrderStatus    `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	PaidAt         *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
}
