package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSummary is the immutable product snapshot the engine needs for
// pricing, size validation, and customizability checks. Fetched once per
// checkout session and never mutated by the cart flow.
type ProductSummary struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	UnitPrice      decimal.Decimal `json:"price"`
	IsCustomizable bool            `json:"is_customizable"`
	Images         []string        `json:"images"`
	Sizes          []string        `json:"sizes"`
}

// PrimaryImage returns the first image, or empty when none exist.
func (p ProductSummary) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasSize reports whether size belongs to the product's size set.
// An empty size set accepts no size selection.
func (p ProductSummary) HasSize(size string) bool {
	for _, candidate := range p.Sizes {
		if candidate == size {
			return true
		}
	}
	return false
}
