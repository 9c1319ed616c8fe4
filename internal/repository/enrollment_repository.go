package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kelasku/kelasku-api/internal/models"
)

// EnrollmentRepository handles direct and bundle enrollment rows.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindEnrollment returns the direct enrollment for a user and topic, or
// sql.ErrNoRows when none exists.
func (r *EnrollmentRepository) FindEnrollment(ctx context.Context, userID, topicID string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, topic_id, payment_status, created_at, updated_at
        FROM enrollments WHERE user_id = $1 AND topic_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, topicID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindBundleEnrollment returns the bundle enrollment for a user and category,
// or sql.ErrNoRows when none exists.
func (r *EnrollmentRepository) FindBundleEnrollment(ctx context.Context, userID, categoryID string) (*models.BundleEnrollment, error) {
	const query = `SELECT id, user_id, category_id, payment_status, enrolled_at, future_topics_included, created_at, updated_at
        FROM bundle_enrollments WHERE user_id = $1 AND category_id = $2`
	var enrollment models.BundleEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, categoryID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpsertEnrollment inserts or updates the single row keyed by (user, topic).
// A re-purchase after failure moves the row back through PENDING.
func (r *EnrollmentRepository) UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, user_id, topic_id, payment_status, created_at, updated_at)
        VALUES (:id, :user_id, :topic_id, :payment_status, :created_at, :updated_at)
        ON CONFLICT (user_id, topic_id) DO UPDATE SET payment_status = EXCLUDED.payment_status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

// UpsertBundleEnrollment inserts or updates the single row keyed by
// (user, category). EnrolledAt and FutureTopicsIncluded are overwritten so a
// completed purchase always reflects the category's plan at completion time.
func (r *EnrollmentRepository) UpsertBundleEnrollment(ctx context.Context, enrollment *models.BundleEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO bundle_enrollments (id, user_id, category_id, payment_status, enrolled_at, future_topics_included, created_at, updated_at)
        VALUES (:id, :user_id, :category_id, :payment_status, :enrolled_at, :future_topics_included, :created_at, :updated_at)
        ON CONFLICT (user_id, category_id) DO UPDATE SET payment_status = EXCLUDED.payment_status,
            enrolled_at = EXCLUDED.enrolled_at, future_topics_included = EXCLUDED.future_topics_included,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("upsert bundle enrollment: %w", err)
	}
	return nil
}

// ListGrantingByUserAndCategory returns the user's direct enrollments in the
// category whose status confers access.
func (r *EnrollmentRepository) ListGrantingByUserAndCategory(ctx context.Context, userID, categoryID string) ([]models.Enrollment, error) {
	const query = `SELECT e.id, e.user_id, e.topic_id, e.payment_status, e.created_at, e.updated_at
        FROM enrollments e
        JOIN topics t ON t.id = e.topic_id
        WHERE e.user_id = $1 AND t.category_id = $2 AND e.payment_status IN ('FREE', 'PAID', 'COMPLETED')`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, userID, categoryID); err != nil {
		return nil, fmt.Errorf("list granting enrollments: %w", err)
	}
	return enrollments, nil
}
