package models

import "time"

// PaymentStatus represents the lifecycle of an enrollment row.
// PENDING transitions to exactly one terminal state; re-purchase after a
// failure upserts the same row back to PENDING.
type PaymentStatus string

// Possible enrollment payment statuses.
const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusFree      PaymentStatus = "FREE"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Granting reports whether the status confers access.
func (s PaymentStatus) Granting() bool {
	switch s {
	case PaymentStatusFree, PaymentStatusPaid, PaymentStatusCompleted:
		return true
	}
	return false
}

// Enrollment captures a user's direct, per-topic purchase or free grant.
// One row per (user, topic); upserted, never deleted.
type Enrollment struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"user_id"`
	TopicID       string        `db:"topic_id" json:"topic_id"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// BundleEnrollment captures a user's whole-category purchase.
// EnrolledAt is set when the payment completes, not at row creation, and
// anchors the temporal access rule. FutureTopicsIncluded is fixed at purchase
// completion from the category's plan type at that moment.
type BundleEnrollment struct {
	ID                   string        `db:"id" json:"id"`
	UserID               string        `db:"user_id" json:"user_id"`
	CategoryID           string        `db:"category_id" json:"category_id"`
	PaymentStatus        PaymentStatus `db:"payment_status" json:"payment_status"`
	EnrolledAt           *time.Time    `db:"enrolled_at" json:"enrolled_at,omitempty"`
	FutureTopicsIncluded bool          `db:"future_topics_included" json:"future_topics_included"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}
