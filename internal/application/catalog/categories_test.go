package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/testutil/catalogserver"
)

func TestLoadCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the list", func(t *testing.T) {
		c, rec, _ := newServerController(t, nil,
			catalogserver.WithProducts(products(3)...),
			catalogserver.WithCategories(
				catalog.Category{Name: "General", Color: "#2dd36f", IsActive: true},
				catalog.Category{Name: "Bakery", SortOrder: 1, IsActive: true},
			))

		categories, err := c.LoadCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, 3, categories[0].ProductCount)
		assert.Equal(t, categories, c.State().Categories)
		assert.Empty(t, rec.all())

		cat, ok := c.ProductCategory(products(1)[0])
		require.True(t, ok)
		assert.Equal(t, "#2dd36f", c.CategoryAvatar(cat).Color)
		assert.Equal(t, "G", c.CategoryAvatar(cat).Initial)
	})

	t.Run("failure keeps the previous list", func(t *testing.T) {
		api := new(MockCatalogAPI)
		previous := []catalog.Category{{Name: "Coffee", IsActive: true}}
		api.On("Categories", mock.Anything).Return(previous, nil).Once()
		failure := shared.NewDomainError(shared.CodeNetwork, "Server unavailable")
		api.On("Categories", mock.Anything).Return(nil, failure).Once()

		c, rec := newMockController(t, api, nil)
		_, err := c.LoadCategories(ctx)
		require.NoError(t, err)

		_, err = c.LoadCategories(ctx)
		assert.True(t, errors.Is(err, shared.ErrNetwork))
		assert.Equal(t, previous, c.State().Categories)

		notes := rec.all()
		require.Len(t, notes, 1)
		assert.Equal(t, LevelError, notes[0].Level)
		assert.Equal(t, OpCategories, notes[0].Operation)
		api.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		c, _ := newMockController(t, new(MockCatalogAPI), nil)
		_, ok := c.ProductCategory(products(1)[0])
		assert.False(t, ok)
	})
}

func TestCategoryReport(t *testing.T) {
	ctx := context.Background()

	t.Run("reads every page", func(t *testing.T) {
		seed := products(120)
		seed[0].IsActive = false
		c, rec, srv := newServerController(t, nil,
			catalogserver.WithProducts(seed...),
			catalogserver.WithCategories(
				catalog.Category{Name: "General", IsActive: true},
				catalog.Category{Name: "Bakery", SortOrder: 1, IsActive: true},
			))

		report, err := c.CategoryReport(ctx)
		require.NoError(t, err)
		require.Len(t, report, 1)
		assert.Equal(t, "General", report[0].Category.Name)
		assert.Equal(t, 119, report[0].ProductCount)
		assert.Equal(t, 119*20, report[0].TotalStock)
		assert.True(t, report[0].TotalValue.Equal(decimal.NewFromInt(119*20*3)))

		assert.Equal(t, 2, srv.CallCount("GET /list"))
		assert.False(t, c.State().Loaded)
		assert.Empty(t, rec.all())
	})

	t.Run("list failure is reported once", func(t *testing.T) {
		api := new(MockCatalogAPI)
		api.On("Categories", mock.Anything).Return([]catalog.Category{{Name: "General", IsActive: true}}, nil)
		failure := shared.NewDomainError(shared.CodeNetwork, "Server unavailable")
		api.On("List", mock.Anything, mock.Anything).Return(catalog.Page{}, failure)

		c, rec := newMockController(t, api, nil)
		_, err := c.CategoryReport(ctx)
		assert.True(t, errors.Is(err, shared.ErrNetwork))
		require.Len(t, rec.all(), 1)
		assert.Equal(t, "Server unavailable", rec.all()[0].Message)
	})
}
