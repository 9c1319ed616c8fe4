package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelasku/kelasku-api/internal/models"
)

func TestTopicsToUnlockFreeAndBundleGrantWholeCategory(t *testing.T) {
	categoryTopics := []string{"t1", "t2", "t3"}
	for _, pt := range []models.PlanType{models.PlanTypeFree, models.PlanTypeBundle} {
		t.Run(string(pt), func(t *testing.T) {
			// Selection must be ignored entirely.
			got := TopicsToUnlock(UnlockInput{
				PlanType:         pt,
				CategoryTopicIDs: categoryTopics,
				SelectedTopicIDs: []string{"t2"},
			})
			assert.ElementsMatch(t, categoryTopics, got)
		})
	}
}

func TestTopicsToUnlockIndividualGrantsSelection(t *testing.T) {
	got := TopicsToUnlock(UnlockInput{
		PlanType:         models.PlanTypeIndividual,
		PurchaseKind:     models.PurchaseKindIndividual,
		CategoryTopicIDs: []string{"t1", "t2", "t3"},
		SelectedTopicIDs: []string{"t3", "t1"},
	})
	assert.Equal(t, []string{"t3", "t1"}, got)
}

func TestTopicsToUnlockFlexibleFollowsPurchaseKind(t *testing.T) {
	in := UnlockInput{
		PlanType:         models.PlanTypeFlexible,
		CategoryTopicIDs: []string{"t1", "t2", "t3"},
		SelectedTopicIDs: []string{"t2"},
	}

	in.PurchaseKind = models.PurchaseKindBundle
	assert.Equal(t, []string{"t1", "t2", "t3"}, TopicsToUnlock(in))

	in.PurchaseKind = models.PurchaseKindIndividual
	assert.Equal(t, []string{"t2"}, TopicsToUnlock(in))
}

func TestTopicsToUnlockDeduplicates(t *testing.T) {
	got := TopicsToUnlock(UnlockInput{
		PlanType:         models.PlanTypeIndividual,
		SelectedTopicIDs: []string{"t1", "t2", "t1", "", "t2"},
	})
	assert.Equal(t, []string{"t1", "t2"}, got)
}

func TestTopicsToUnlockUnknownPlanType(t *testing.T) {
	assert.Nil(t, TopicsToUnlock(UnlockInput{PlanType: models.PlanType("VIP"), CategoryTopicIDs: []string{"t1"}}))
}
