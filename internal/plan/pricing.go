package plan

import (
	"math"

	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

// PriceInput carries everything the calculator needs. Prices are major-unit
// decimals; conversion to the gateway's minor unit happens at the gateway
// call boundary, never here.
type PriceInput struct {
	PlanType         models.PlanType
	BundlePrice      float64
	TopicPrices      map[string]float64
	SelectedTopicIDs []string
}

// Breakdown explains how the final price was assembled. For FLEXIBLE
// individual purchases it reports whether the bundle would have been strictly
// cheaper; the calculator never switches kinds on its own, the caller decides.
type Breakdown struct {
	BundlePrice     float64            `json:"bundle_price,omitempty"`
	IndividualTotal float64            `json:"individual_total,omitempty"`
	TopicPrices     map[string]float64 `json:"topic_prices,omitempty"`
	IsBundleCheaper bool               `json:"is_bundle_cheaper"`
}

// Quote is the calculator's outcome.
type Quote struct {
	FinalPrice   float64             `json:"final_price"`
	PurchaseKind models.PurchaseKind `json:"purchase_kind"`
	Breakdown    Breakdown           `json:"breakdown"`
}

// CalculatePrice computes the amount owed for a purchase. Failures here are
// caller precondition violations (the request should have been validated
// first), so they come back as errors rather than Result values.
func CalculatePrice(in PriceInput) (*Quote, error) {
	switch in.PlanType {
	case models.PlanTypeFree:
		return &Quote{FinalPrice: 0, PurchaseKind: models.PurchaseKindFree}, nil

	case models.PlanTypeIndividual:
		total, selected, err := sumSelected(in.TopicPrices, in.SelectedTopicIDs)
		if err != nil {
			return nil, err
		}
		return &Quote{
			FinalPrice:   total,
			PurchaseKind: models.PurchaseKindIndividual,
			Breakdown:    Breakdown{IndividualTotal: total, TopicPrices: selected},
		}, nil

	case models.PlanTypeBundle:
		if in.BundlePrice <= 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidBundlePrice, "")
		}
		return &Quote{
			FinalPrice:   in.BundlePrice,
			PurchaseKind: models.PurchaseKindBundle,
			Breakdown:    Breakdown{BundlePrice: in.BundlePrice},
		}, nil

	case models.PlanTypeFlexible:
		if in.BundlePrice <= 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidBundlePrice, "")
		}
		if len(in.SelectedTopicIDs) == 0 {
			return &Quote{
				FinalPrice:   in.BundlePrice,
				PurchaseKind: models.PurchaseKindBundle,
				Breakdown:    Breakdown{BundlePrice: in.BundlePrice},
			}, nil
		}
		total, selected, err := sumSelected(in.TopicPrices, in.SelectedTopicIDs)
		if err != nil {
			return nil, err
		}
		return &Quote{
			FinalPrice:   total,
			PurchaseKind: models.PurchaseKindIndividual,
			Breakdown: Breakdown{
				BundlePrice:     in.BundlePrice,
				IndividualTotal: total,
				TopicPrices:     selected,
				IsBundleCheaper: in.BundlePrice < total,
			},
		}, nil
	}

	return nil, appErrors.Clone(appErrors.ErrInvalidPlanType, "unknown plan type: "+string(in.PlanType))
}

// MinorUnits converts a major-unit amount to the gateway's minor unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func sumSelected(topicPrices map[string]float64, selected []string) (float64, map[string]float64, error) {
	if len(selected) == 0 {
		return 0, nil, appErrors.Clone(appErrors.ErrEmptySelection, "")
	}
	total := 0.0
	prices := make(map[string]float64, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		price, ok := topicPrices[id]
		if !ok {
			return 0, nil, appErrors.Clone(appErrors.ErrValidation, "no price for topic "+id)
		}
		if price < 0 {
			return 0, nil, appErrors.Clone(appErrors.ErrValidation, "negative price for topic "+id)
		}
		prices[id] = price
		total += price
	}
	return total, prices, nil
}
