package domain

import "github.com/shopspring/decimal"

func init() {
	// prices are written as JSON numbers, matching what clients send
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item persisted in the products file
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"` // uploaded asset url or external url
}

func (p Product) RecordID() int64 {
	return p.ID
}

// ProductInput carries the caller-supplied fields of a new product
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.Image == nil
}

// Apply shallow-merges the patch over dst. The id is never changed.
func (p ProductPatch) Apply(dst Product) Product {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	return dst
}
