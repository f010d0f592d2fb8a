package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/identity"
)

func TestCategory_UnmarshalJSON_Defaults(t *testing.T) {
	var c Category
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Coffee"}`), &c))

	assert.Equal(t, "Coffee", c.Name)
	assert.Equal(t, DefaultCategoryIcon, c.Icon)
	assert.True(t, c.IsActive)
	assert.Empty(t, c.Color)
}

func TestCategory_Avatar(t *testing.T) {
	t.Run("color overrides the hash", func(t *testing.T) {
		a := Category{Name: "Coffee", Color: "#eb445a"}.Avatar()
		assert.Equal(t, "C", a.Initial)
		assert.Equal(t, "#eb445a", a.Color)
	})

	t.Run("no color falls back to the hash", func(t *testing.T) {
		a := Category{Name: "Coffee"}.Avatar()
		assert.Equal(t, identity.ColorFor("Coffee").Hex, a.Color)
	})

	t.Run("image", func(t *testing.T) {
		a := Category{Name: "Coffee", ImageURL: "/media/categories/coffee.png"}.Avatar()
		assert.True(t, a.HasImage())
		assert.Equal(t, "C", a.Fallback().Initial)
	})
}

func TestComputeCategoryStats(t *testing.T) {
	coffee := Category{Name: "Coffee", Slug: "coffee", IsActive: true}
	bakery := Category{Name: "Bakery", IsActive: true}
	empty := Category{Name: "Tea", IsActive: true}
	hidden := Category{Name: "Hidden", IsActive: false}

	products := []Product{
		{Category: "coffee", Price: decimal.NewFromInt(2), Stock: 10, IsActive: true},
		{Category: "Coffee", Price: decimal.NewFromInt(3), Stock: 5, IsActive: true},
		{Category: "Bakery", Price: decimal.NewFromInt(1), Stock: 7, IsActive: true},
		{Category: "Bakery", Price: decimal.NewFromInt(9), Stock: 9, IsActive: false},
		{Category: "Hidden", Price: decimal.NewFromInt(1), Stock: 1, IsActive: true},
	}

	rows := ComputeCategoryStats([]Category{coffee, bakery, empty, hidden}, products)
	require.Len(t, rows, 2)

	assert.Equal(t, "Coffee", rows[0].Category.Name)
	assert.Equal(t, 2, rows[0].ProductCount)
	assert.Equal(t, 15, rows[0].TotalStock)
	assert.True(t, rows[0].TotalValue.Equal(decimal.NewFromInt(35)))

	assert.Equal(t, "Bakery", rows[1].Category.Name)
	assert.Equal(t, 1, rows[1].ProductCount)
	assert.True(t, rows[1].TotalValue.Equal(decimal.NewFromInt(7)))
}
