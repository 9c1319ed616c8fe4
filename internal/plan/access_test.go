package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kelasku/kelasku-api/internal/models"
)

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEvaluateTopicAccessFreeTopic(t *testing.T) {
	dec := EvaluateTopicAccess(AccessInput{Topic: models.Topic{ID: "t1", IsFree: true}})
	assert.True(t, dec.HasAccess)
	assert.Equal(t, AccessTypeFree, dec.AccessType)
}

func TestEvaluateTopicAccessDirectEnrollment(t *testing.T) {
	for _, status := range []models.PaymentStatus{models.PaymentStatusPaid, models.PaymentStatusCompleted, models.PaymentStatusFree} {
		t.Run(string(status), func(t *testing.T) {
			dec := EvaluateTopicAccess(AccessInput{
				Topic:  models.Topic{ID: "t1"},
				Direct: &models.Enrollment{TopicID: "t1", PaymentStatus: status},
			})
			assert.True(t, dec.HasAccess)
			assert.Equal(t, AccessTypeIndividual, dec.AccessType)
		})
	}
}

func TestEvaluateTopicAccessPendingDirectDenies(t *testing.T) {
	dec := EvaluateTopicAccess(AccessInput{
		Topic:  models.Topic{ID: "t1"},
		Direct: &models.Enrollment{TopicID: "t1", PaymentStatus: models.PaymentStatusPending},
	})
	assert.False(t, dec.HasAccess)
	assert.Equal(t, "payment pending", dec.Reason)
}

func TestEvaluateTopicAccessPendingDirectDoesNotBlockBundle(t *testing.T) {
	// A pending per-topic order must not hide legitimate bundle access.
	enrolledAt := ts("2025-01-05")
	dec := EvaluateTopicAccess(AccessInput{
		Topic:  models.Topic{ID: "t1", CreatedAt: ts("2025-01-01")},
		Direct: &models.Enrollment{TopicID: "t1", PaymentStatus: models.PaymentStatusPending},
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt},
	})
	assert.True(t, dec.HasAccess)
	assert.Equal(t, AccessTypeBundle, dec.AccessType)
}

func TestEvaluateTopicAccessTemporalRule(t *testing.T) {
	enrolledAt := ts("2025-01-05")
	topic := models.Topic{ID: "t1", CreatedAt: ts("2025-01-10")}

	dec := EvaluateTopicAccess(AccessInput{
		Topic:  topic,
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt, FutureTopicsIncluded: false},
	})
	assert.False(t, dec.HasAccess)
	assert.Equal(t, "topic added after bundle purchase", dec.Reason)

	dec = EvaluateTopicAccess(AccessInput{
		Topic:  topic,
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt, FutureTopicsIncluded: true},
	})
	assert.True(t, dec.HasAccess)
	assert.Equal(t, AccessTypeBundle, dec.AccessType)
}

func TestEvaluateTopicAccessTopicAtExactEnrollmentTime(t *testing.T) {
	enrolledAt := ts("2025-01-05")
	dec := EvaluateTopicAccess(AccessInput{
		Topic:  models.Topic{ID: "t1", CreatedAt: enrolledAt},
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt},
	})
	assert.True(t, dec.HasAccess)
}

func TestEvaluateTopicAccessIncompleteBundleDenies(t *testing.T) {
	enrolledAt := ts("2025-01-05")
	dec := EvaluateTopicAccess(AccessInput{
		Topic:  models.Topic{ID: "t1", CreatedAt: ts("2025-01-01")},
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusPending, EnrolledAt: &enrolledAt},
	})
	assert.False(t, dec.HasAccess)
	assert.Equal(t, AccessTypeNone, dec.AccessType)
}

func TestEvaluateTopicAccessNoEnrollment(t *testing.T) {
	dec := EvaluateTopicAccess(AccessInput{Topic: models.Topic{ID: "t1"}})
	assert.False(t, dec.HasAccess)
	assert.Equal(t, "no enrollment", dec.Reason)
}

func TestEvaluateTopicAccessIdempotent(t *testing.T) {
	enrolledAt := ts("2025-01-05")
	in := AccessInput{
		Topic:  models.Topic{ID: "t1", CreatedAt: ts("2025-01-03")},
		Bundle: &models.BundleEnrollment{PaymentStatus: models.PaymentStatusCompleted, EnrolledAt: &enrolledAt},
	}
	assert.Equal(t, EvaluateTopicAccess(in), EvaluateTopicAccess(in))
}
