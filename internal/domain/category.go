package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryRef identifies a category on write paths.
type CategoryRef struct {
	ID uuid.UUID
}

// CategoryView is the category as embedded in a populated product.
type CategoryView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

func (v CategoryView) Ref() CategoryRef {
	return CategoryRef{ID: v.ID}
}

// View returns the embedded representation of c.
func (c *Category) View() CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}
