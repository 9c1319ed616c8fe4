package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

func TestPricingRequirements(t *testing.T) {
	tests := []struct {
		planType      models.PlanType
		bundlePrice   bool
		topicPrices   bool
		allowedKinds  []models.PurchaseKind
	}{
		{models.PlanTypeFree, false, false, []models.PurchaseKind{models.PurchaseKindFree}},
		{models.PlanTypeIndividual, false, true, []models.PurchaseKind{models.PurchaseKindIndividual}},
		{models.PlanTypeBundle, true, false, []models.PurchaseKind{models.PurchaseKindBundle}},
		{models.PlanTypeFlexible, true, true, []models.PurchaseKind{models.PurchaseKindBundle, models.PurchaseKindIndividual, models.PurchaseKindFree}},
	}

	for _, tc := range tests {
		t.Run(string(tc.planType), func(t *testing.T) {
			req, err := PricingRequirements(tc.planType)
			require.NoError(t, err)
			assert.Equal(t, tc.bundlePrice, req.RequiresBundlePrice)
			assert.Equal(t, tc.topicPrices, req.RequiresTopicPrices)
			assert.Equal(t, tc.allowedKinds, req.AllowedPurchaseKinds)
		})
	}
}

func TestPricingRequirementsUnknownPlanType(t *testing.T) {
	_, err := PricingRequirements(models.PlanType("PREMIUM"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidPlanType.Code, appErr.Code)
}

func TestRequirementsAllows(t *testing.T) {
	req, err := PricingRequirements(models.PlanTypeFlexible)
	require.NoError(t, err)
	assert.True(t, req.Allows(models.PurchaseKindBundle))
	assert.True(t, req.Allows(models.PurchaseKindIndividual))
	assert.True(t, req.Allows(models.PurchaseKindFree))

	req, err = PricingRequirements(models.PlanTypeBundle)
	require.NoError(t, err)
	assert.False(t, req.Allows(models.PurchaseKindIndividual))
}

func TestValidateCategoryPricing(t *testing.T) {
	res := ValidateCategoryPricing(models.PlanTypeBundle, 499, nil)
	assert.True(t, res.Valid)

	res = ValidateCategoryPricing(models.PlanTypeBundle, 0, nil)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrInvalidBundlePrice.Code, res.Err.Code)

	res = ValidateCategoryPricing(models.PlanTypeFlexible, -1, map[string]float64{"t1": 50})
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrInvalidBundlePrice.Code, res.Err.Code)

	res = ValidateCategoryPricing(models.PlanTypeIndividual, 0, map[string]float64{"t1": -5})
	require.False(t, res.Valid)

	res = ValidateCategoryPricing(models.PlanTypeFree, 0, nil)
	assert.True(t, res.Valid)

	res = ValidateCategoryPricing(models.PlanType("VIP"), 10, nil)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrInvalidPlanType.Code, res.Err.Code)
}
