package catalog

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/ERPlora/module-inventory/internal/domain/identity"
)

const (
	// DefaultCategoryColor is the color the server assigns new categories
	DefaultCategoryColor = "#3880ff"
	// DefaultCategoryIcon is the icon the server assigns new categories
	DefaultCategoryIcon = "cube-outline"
)

// Category groups products. Its color, when set, overrides the hashed
// avatar color.
type Category struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	Color        string    `json:"color,omitempty"`
	ImageURL     string    `json:"image,omitempty"`
	Description  string    `json:"description,omitempty"`
	SortOrder    int       `json:"sort_order"`
	ProductCount int       `json:"product_count"`
	IsActive     bool      `json:"is_active"`
}

// UnmarshalJSON defaults the fields older servers omit
func (c *Category) UnmarshalJSON(data []byte) error {
	type categoryAlias Category
	alias := categoryAlias{
		Icon:     DefaultCategoryIcon,
		IsActive: true,
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*c = Category(alias)
	return nil
}

// Avatar returns the badge drawn for the category
func (c Category) Avatar() identity.Avatar {
	return identity.Render(c.Name,
		identity.WithColor(c.Color),
		identity.WithImage(c.ImageURL))
}

// Matches reports whether the category is the one a product names.
// Products carry the category as free text, so names compare case-insensitively.
func (c Category) Matches(p Product) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(p.Category)) ||
		(c.Slug != "" && strings.EqualFold(c.Slug, strings.TrimSpace(p.Category)))
}
