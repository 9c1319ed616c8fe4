package plan

import "github.com/kelasku/kelasku-api/internal/models"

// AccessType names the path through which access was (or was not) granted.
type AccessType string

// Possible access types.
const (
	AccessTypeFree       AccessType = "free"
	AccessTypeIndividual AccessType = "individual"
	AccessTypeBundle     AccessType = "bundle"
	AccessTypeNone       AccessType = "none"
)

// AccessInput is the snapshot the evaluator decides over. Direct and Bundle
// are nil when no enrollment row exists for the pair.
type AccessInput struct {
	Topic  models.Topic
	Direct *models.Enrollment
	Bundle *models.BundleEnrollment
}

// Decision is the outcome of an access evaluation. Absence of access is a
// normal decision, never an error.
type Decision struct {
	HasAccess  bool       `json:"has_access"`
	AccessType AccessType `json:"access_type"`
	Reason     string     `json:"reason"`
}

// EvaluateTopicAccess decides whether the snapshot grants access to the topic.
//
// A direct enrollment in a non-terminal state (PENDING/FAILED) does not block
// the bundle path: the user may legitimately hold bundle access alongside an
// abandoned per-topic order.
func EvaluateTopicAccess(in AccessInput) Decision {
	if in.Topic.IsFree {
		return Decision{HasAccess: true, AccessType: AccessTypeFree, Reason: "topic is free"}
	}

	if in.Direct != nil && in.Direct.PaymentStatus.Granting() {
		return Decision{HasAccess: true, AccessType: AccessTypeIndividual, Reason: "direct enrollment"}
	}

	if in.Bundle != nil && in.Bundle.PaymentStatus == models.PaymentStatusCompleted {
		if in.Bundle.FutureTopicsIncluded {
			return Decision{HasAccess: true, AccessType: AccessTypeBundle, Reason: "bundle includes future topics"}
		}
		if in.Bundle.EnrolledAt != nil && !in.Topic.CreatedAt.After(*in.Bundle.EnrolledAt) {
			return Decision{HasAccess: true, AccessType: AccessTypeBundle, Reason: "topic existed at bundle purchase"}
		}
		return Decision{HasAccess: false, AccessType: AccessTypeNone, Reason: "topic added after bundle purchase"}
	}

	if in.Direct != nil {
		switch in.Direct.PaymentStatus {
		case models.PaymentStatusPending:
			return Decision{HasAccess: false, AccessType: AccessTypeNone, Reason: "payment pending"}
		case models.PaymentStatusFailed:
			return Decision{HasAccess: false, AccessType: AccessTypeNone, Reason: "payment failed"}
		}
	}

	return Decision{HasAccess: false, AccessType: AccessTypeNone, Reason: "no enrollment"}
}
