package models

import "time"

// Topic is a purchasable unit of content inside a category.
// CreatedAt drives the temporal access rule for bundle purchases.
type Topic struct {
	ID         string    `db:"id" json:"id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Title      string    `db:"title" json:"title"`
	Price      float64   `db:"price" json:"price"`
	IsFree     bool      `db:"is_free" json:"is_free"`
	Position   int       `db:"position" json:"position"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
