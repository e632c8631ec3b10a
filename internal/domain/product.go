package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the read model returned to callers, with its category populated.
type Product struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	RichDescription string       `json:"richDescription"`
	Image           string       `json:"image"`
	Images          []string     `json:"images"`
	Brand           string       `json:"brand"`
	Price           float64      `json:"price"`
	Category        CategoryView `json:"category"`
	CountInStock    int          `json:"countInStock"`
	Rating          float64      `json:"rating"`
	NumReviews      int          `json:"numReviews"`
	IsFeatured      bool         `json:"isFeatured"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ProductDraft is the write model persisted by the product repository.
// The category is carried as a bare reference and resolved on read.
type ProductDraft struct {
	Name            string
	Description     string
	RichDescription string
	Image           string
	Brand           string
	Price           float64
	Category        CategoryRef
	CountInStock    int
	Rating          float64
	NumReviews      int
	IsFeatured      bool
}

// ProductPatch is a partial product write. Nil fields keep their stored value.
type ProductPatch struct {
	Name            *string
	Description     *string
	RichDescription *string
	Image           *string
	Brand           *string
	Price           *float64
	Category        *CategoryRef
	CountInStock    *int
	Rating          *float64
	NumReviews      *int
	IsFeatured      *bool
}
