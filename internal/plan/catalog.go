// Package plan implements the entitlement and pricing rules for category
// plan types. All functions are pure: persistence and gateway calls stay with
// the calling service, which supplies a consistent snapshot per invocation.
package plan

import (
	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

// Requirements describes what a plan type demands from a category's pricing
// and which purchase kinds it accepts.
type Requirements struct {
	PlanType             models.PlanType       `json:"plan_type"`
	RequiresBundlePrice  bool                  `json:"requires_bundle_price"`
	RequiresTopicPrices  bool                  `json:"requires_topic_prices"`
	AllowedPurchaseKinds []models.PurchaseKind `json:"allowed_purchase_kinds"`
}

// Allows reports whether the plan accepts the given purchase kind.
func (r Requirements) Allows(kind models.PurchaseKind) bool {
	for _, k := range r.AllowedPurchaseKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// PricingRequirements returns the pricing rules for a plan type.
// An out-of-enum value is a catalog configuration fault, not a user error.
func PricingRequirements(pt models.PlanType) (Requirements, error) {
	switch pt {
	case models.PlanTypeFree:
		return Requirements{
			PlanType:             pt,
			AllowedPurchaseKinds: []models.PurchaseKind{models.PurchaseKindFree},
		}, nil
	case models.PlanTypeIndividual:
		return Requirements{
			PlanType:             pt,
			RequiresTopicPrices:  true,
			AllowedPurchaseKinds: []models.PurchaseKind{models.PurchaseKindIndividual},
		}, nil
	case models.PlanTypeBundle:
		return Requirements{
			PlanType:             pt,
			RequiresBundlePrice:  true,
			AllowedPurchaseKinds: []models.PurchaseKind{models.PurchaseKindBundle},
		}, nil
	case models.PlanTypeFlexible:
		return Requirements{
			PlanType:             pt,
			RequiresBundlePrice:  true,
			RequiresTopicPrices:  true,
			AllowedPurchaseKinds: []models.PurchaseKind{models.PurchaseKindBundle, models.PurchaseKindIndividual, models.PurchaseKindFree},
		}, nil
	}
	return Requirements{}, appErrors.Clone(appErrors.ErrInvalidPlanType, "unknown plan type: "+string(pt))
}

// Result is the value-style outcome of a validation. Validation failures are
// data, not raised errors; callers branch on Valid.
type Result struct {
	Valid bool             `json:"valid"`
	Err   *appErrors.Error `json:"error,omitempty"`
}

func reject(err *appErrors.Error, message string) Result {
	return Result{Valid: false, Err: appErrors.Clone(err, message)}
}

// ValidateCategoryPricing checks that a category's pricing satisfies its plan
// type's requirements. topicPrices maps topic id to major-unit price.
func ValidateCategoryPricing(pt models.PlanType, bundlePrice float64, topicPrices map[string]float64) Result {
	req, err := PricingRequirements(pt)
	if err != nil {
		return Result{Valid: false, Err: appErrors.FromError(err)}
	}
	if req.RequiresBundlePrice && bundlePrice <= 0 {
		return reject(appErrors.ErrInvalidBundlePrice, "plan type "+string(pt)+" requires a positive bundle price")
	}
	if req.RequiresTopicPrices {
		for id, price := range topicPrices {
			if price < 0 {
				return reject(appErrors.ErrValidation, "topic "+id+" has a negative price")
			}
		}
	}
	return Result{Valid: true}
}
