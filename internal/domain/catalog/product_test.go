package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

func TestProduct_UnmarshalJSON_Defaults(t *testing.T) {
	data := []byte(`{"id":"6f1c2a8e-0c55-4b4e-9f53-0d3c1b9d3f11","name":"Espresso","sku":"ESP-01","price":"2.50","stock":4}`)

	var p Product
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, "Espresso", p.Name)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.Equal(t, DefaultLowStockThreshold, p.LowStockThreshold)
	assert.True(t, p.IsActive)
	assert.Equal(t, ProductTypePhysical, p.ProductType)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, p.Cost.IsZero())
}

func TestProduct_UnmarshalJSON_ExplicitValues(t *testing.T) {
	data := []byte(`{"name":"Tea","sku":"TEA","category":"drinks","price":1.2,"low_stock_threshold":0,"is_active":false}`)

	var p Product
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, "drinks", p.Category)
	assert.Equal(t, 0, p.LowStockThreshold)
	assert.False(t, p.IsActive)
}

func TestProduct_Derived(t *testing.T) {
	p := Product{
		Price:             decimal.RequireFromString("15"),
		Cost:              decimal.RequireFromString("10"),
		Stock:             3,
		LowStockThreshold: 10,
	}

	assert.True(t, p.IsLowStock())
	assert.True(t, p.InStock())
	assert.True(t, p.ProfitMargin().Equal(decimal.NewFromInt(50)))
	assert.True(t, p.StockValue().Equal(decimal.NewFromInt(45)))

	p.Cost = decimal.Zero
	assert.True(t, p.ProfitMargin().IsZero())
}

func TestProductFields_Validate(t *testing.T) {
	t.Run("valid fields pass", func(t *testing.T) {
		f := NewProductFields("Croissant", "CRO-1", decimal.RequireFromString("1.80"))
		assert.NoError(t, f.Validate())
	})

	t.Run("missing name and sku", func(t *testing.T) {
		f := NewProductFields("", "", decimal.Zero)
		err := f.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Contains(t, err.Error(), "Name is required")
		assert.Contains(t, err.Error(), "SKU is required")
	})

	t.Run("negative price and stock", func(t *testing.T) {
		f := NewProductFields("Bread", "BRD", decimal.RequireFromString("-1"))
		f.Stock = -2
		err := f.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Price cannot be negative")
		assert.Contains(t, err.Error(), "Stock cannot be negative")
	})

	t.Run("malformed ean13", func(t *testing.T) {
		f := NewProductFields("Milk", "MLK", decimal.NewFromInt(1))
		f.EAN13 = "12345"
		err := f.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EAN-13")
	})
}

func TestProductFields_NormalizeAndFormValues(t *testing.T) {
	active := false
	f := ProductFields{
		Name:     "  Latte ",
		SKU:      " LAT-2 ",
		Price:    decimal.RequireFromString("3.5"),
		Stock:    7,
		IsActive: &active,
	}.Normalize()

	values := f.FormValues()
	assert.Equal(t, "Latte", values["name"])
	assert.Equal(t, "LAT-2", values["sku"])
	assert.Equal(t, DefaultCategory, values["category"])
	assert.Equal(t, "3.50", values["price"])
	assert.Equal(t, "0.00", values["cost"])
	assert.Equal(t, "7", values["stock"])
	assert.Equal(t, "physical", values["product_type"])
	assert.Equal(t, "false", values["is_active"])
}

func TestProduct_Fields(t *testing.T) {
	p := Product{Name: "Scone", SKU: "SC", Category: "bakery", Price: decimal.NewFromInt(2), IsActive: true}
	f := p.Fields()
	assert.Equal(t, "Scone", f.Name)
	require.NotNil(t, f.IsActive)
	assert.True(t, *f.IsActive)
	assert.Nil(t, f.Image)
}
