package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelasku/kelasku-api/internal/models"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

func validRequest() PurchaseRequest {
	return PurchaseRequest{
		PlanType:     models.PlanTypeFlexible,
		PurchaseKind: models.PurchaseKindBundle,
		CategoryID:   "cat-1",
		UserID:       "user-1",
	}
}

func TestValidatePurchaseRequestMissingFields(t *testing.T) {
	cases := map[string]PurchaseRequest{
		"no plan type":   {PurchaseKind: models.PurchaseKindBundle, CategoryID: "c", UserID: "u"},
		"no category id": {PlanType: models.PlanTypeBundle, PurchaseKind: models.PurchaseKindBundle, UserID: "u"},
		"no user id":     {PlanType: models.PlanTypeBundle, PurchaseKind: models.PurchaseKindBundle, CategoryID: "c"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			res := ValidatePurchaseRequest(req)
			require.False(t, res.Valid)
			assert.Equal(t, appErrors.ErrMissingFields.Code, res.Err.Code)
		})
	}
}

func TestValidatePurchaseRequestMissingFieldsBeforePlanChecks(t *testing.T) {
	// Even a nonsense purchase kind reports MISSING_FIELDS first.
	res := ValidatePurchaseRequest(PurchaseRequest{PurchaseKind: models.PurchaseKind("gift")})
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrMissingFields.Code, res.Err.Code)
}

func TestValidatePurchaseRequestUnknownKind(t *testing.T) {
	req := validRequest()
	req.PurchaseKind = models.PurchaseKind("gift")
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrUnknownPurchaseKind.Code, res.Err.Code)
}

func TestValidatePurchaseRequestFreePlan(t *testing.T) {
	req := validRequest()
	req.PlanType = models.PlanTypeFree

	req.PurchaseKind = models.PurchaseKindFree
	assert.True(t, ValidatePurchaseRequest(req).Valid)

	req.PurchaseKind = models.PurchaseKindBundle
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrPlanMismatch.Code, res.Err.Code)
}

func TestValidatePurchaseRequestIndividualPlan(t *testing.T) {
	req := validRequest()
	req.PlanType = models.PlanTypeIndividual
	req.PurchaseKind = models.PurchaseKindIndividual
	req.SelectedTopicIDs = []string{"t1"}
	assert.True(t, ValidatePurchaseRequest(req).Valid)

	req.SelectedTopicIDs = nil
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrEmptySelection.Code, res.Err.Code)

	req.PurchaseKind = models.PurchaseKindBundle
	res = ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrPlanMismatch.Code, res.Err.Code)
}

func TestValidatePurchaseRequestBundlePlan(t *testing.T) {
	req := validRequest()
	req.PlanType = models.PlanTypeBundle
	req.PurchaseKind = models.PurchaseKindBundle
	assert.True(t, ValidatePurchaseRequest(req).Valid)

	req.PurchaseKind = models.PurchaseKindIndividual
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrPlanMismatch.Code, res.Err.Code)

	req.PurchaseKind = models.PurchaseKindFree
	res = ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrPlanMismatch.Code, res.Err.Code)
}

func TestValidatePurchaseRequestFlexiblePlan(t *testing.T) {
	req := validRequest()

	req.PurchaseKind = models.PurchaseKindBundle
	assert.True(t, ValidatePurchaseRequest(req).Valid)

	req.PurchaseKind = models.PurchaseKindFree
	assert.True(t, ValidatePurchaseRequest(req).Valid)

	req.PurchaseKind = models.PurchaseKindIndividual
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrEmptySelection.Code, res.Err.Code)

	req.SelectedTopicIDs = []string{"t1", "t2"}
	assert.True(t, ValidatePurchaseRequest(req).Valid)
}

func TestValidatePurchaseRequestUnknownPlanType(t *testing.T) {
	req := validRequest()
	req.PlanType = models.PlanType("VIP")
	res := ValidatePurchaseRequest(req)
	require.False(t, res.Valid)
	assert.Equal(t, appErrors.ErrInvalidPlanType.Code, res.Err.Code)
}
