package plan

import (
	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

// PurchaseRequest is a requested purchase to validate against a category's
// plan type.
type PurchaseRequest struct {
	PlanType         models.PlanType
	PurchaseKind     models.PurchaseKind
	CategoryID       string
	UserID           string
	SelectedTopicIDs []string
}

// ValidatePurchaseRequest decides whether the requested purchase is legal
// under the category's plan type. Missing identity fields are rejected before
// any plan-specific rule runs.
func ValidatePurchaseRequest(req PurchaseRequest) Result {
	if req.PlanType == "" || req.CategoryID == "" || req.UserID == "" {
		return reject(appErrors.ErrMissingFields, "planType, categoryId and userId are required")
	}

	switch req.PurchaseKind {
	case models.PurchaseKindFree, models.PurchaseKindIndividual, models.PurchaseKindBundle:
	default:
		return reject(appErrors.ErrUnknownPurchaseKind, "unknown purchase type: "+string(req.PurchaseKind))
	}

	switch req.PlanType {
	case models.PlanTypeFree:
		if req.PurchaseKind != models.PurchaseKindFree {
			return reject(appErrors.ErrPlanMismatch, "free categories only allow free enrollment")
		}
	case models.PlanTypeIndividual:
		if req.PurchaseKind != models.PurchaseKindIndividual {
			return reject(appErrors.ErrPlanMismatch, "individual categories only allow per-topic purchase")
		}
		if len(req.SelectedTopicIDs) == 0 {
			return reject(appErrors.ErrEmptySelection, "select at least one topic")
		}
	case models.PlanTypeBundle:
		if req.PurchaseKind != models.PurchaseKindBundle {
			return reject(appErrors.ErrPlanMismatch, "bundle categories only allow bundle purchase")
		}
	case models.PlanTypeFlexible:
		if req.PurchaseKind == models.PurchaseKindIndividual && len(req.SelectedTopicIDs) == 0 {
			return reject(appErrors.ErrEmptySelection, "select at least one topic")
		}
	default:
		return reject(appErrors.ErrInvalidPlanType, "unknown plan type: "+string(req.PlanType))
	}

	return Result{Valid: true}
}
