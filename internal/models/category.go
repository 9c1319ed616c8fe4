package models

import "time"

// PlanType describes how topics inside a category are sold.
type PlanType string

// Supported plan types.
const (
	PlanTypeFree       PlanType = "FREE"
	PlanTypeIndividual PlanType = "INDIVIDUAL"
	PlanTypeBundle     PlanType = "BUNDLE"
	PlanTypeFlexible   PlanType = "FLEXIBLE"
)

// Valid reports whether the plan type belongs to the supported enum.
func (p PlanType) Valid() bool {
	switch p {
	case PlanTypeFree, PlanTypeIndividual, PlanTypeBundle, PlanTypeFlexible:
		return true
	}
	return false
}

// RequiresBundlePrice reports whether a category of this plan type must carry
// a positive bundle price.
func (p PlanType) RequiresBundlePrice() bool {
	return p == PlanTypeBundle || p == PlanTypeFlexible
}

// Category groups topics sold under a single plan type.
// The plan type is immutable once any enrollment references the category.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	PlanType    PlanType  `db:"plan_type" json:"plan_type"`
	BundlePrice float64   `db:"bundle_price" json:"bundle_price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryFilter provides filters for listing categories.
type CategoryFilter struct {
	PlanType  PlanType
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
