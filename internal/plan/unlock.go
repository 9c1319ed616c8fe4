package plan

import "github.com/kelasku/kelasku-api/internal/models"

// UnlockInput describes a validated purchase whose grants must be resolved.
// CategoryTopicIDs is every topic currently in the category, in catalog order.
type UnlockInput struct {
	PlanType         models.PlanType
	PurchaseKind     models.PurchaseKind
	CategoryTopicIDs []string
	SelectedTopicIDs []string
}

// TopicsToUnlock resolves the exact set of topic ids a purchase grants,
// preserving input order and dropping duplicates. FREE and BUNDLE plans grant
// the whole category; INDIVIDUAL grants the selection; FLEXIBLE follows the
// purchase kind.
func TopicsToUnlock(in UnlockInput) []string {
	var source []string
	switch in.PlanType {
	case models.PlanTypeFree, models.PlanTypeBundle:
		source = in.CategoryTopicIDs
	case models.PlanTypeIndividual:
		source = in.SelectedTopicIDs
	case models.PlanTypeFlexible:
		if in.PurchaseKind == models.PurchaseKindBundle {
			source = in.CategoryTopicIDs
		} else {
			source = in.SelectedTopicIDs
		}
	default:
		return nil
	}

	out := make([]string, 0, len(source))
	seen := make(map[string]struct{}, len(source))
	for _, id := range source {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
