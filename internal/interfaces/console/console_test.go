package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/ERPlora/module-inventory/internal/application/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/identity"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	n.Notify(context.Background(), app.Notification{Level: app.LevelSuccess, Message: "Product created"})
	n.Notify(context.Background(), app.Notification{Level: app.LevelError, Message: "Row 4 invalid"})

	assert.Equal(t, "✓ Product created\n✗ Row 4 invalid\n", buf.String())
}

func TestPrompt(t *testing.T) {
	ctx := context.Background()
	q := app.Confirmation{Title: "Delete product", Message: "Delete Milk (MILK-1)?"}

	tests := []struct {
		name  string
		input string
		want  bool
		err   error
	}{
		{"yes", "y\n", true, nil},
		{"full word", " YES \n", true, nil},
		{"no", "n\n", false, nil},
		{"empty line declines", "\n", false, nil},
		{"answer without newline", "yes", true, nil},
		{"closed input", "", false, ErrNoAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompt(strings.NewReader(tt.input), &out, false)
			ok, err := p.Confirm(ctx, q)
			assert.Equal(t, tt.want, ok)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, "Delete product: Delete Milk (MILK-1)? [y/N] ", out.String())
		})
	}

	t.Run("assume yes reads nothing", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := NewPrompt(strings.NewReader(""), &out, true).Confirm(ctx, q)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, out.String())
	})
}

func TestRenderPage(t *testing.T) {
	products := []catalog.Product{
		{ID: uuid.New(), Name: "Café con leche", SKU: "CAF-1", Category: "drinks", Price: decimal.RequireFromString("1.5"), Stock: 40, LowStockThreshold: 10, IsActive: true},
		{ID: uuid.New(), Name: "Bread", SKU: "BRD-1", Category: "bakery", Price: decimal.NewFromInt(2), Stock: 0, LowStockThreshold: 10, IsActive: true, ImageURL: "/media/bread.png"},
	}
	page := catalog.NewPage(products, 1, 10, 2)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, page, func(p catalog.Product) identity.Avatar {
		return identity.Render(p.Name, identity.WithImage(p.ImageURL))
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "[C]"))
	assert.True(t, strings.HasPrefix(lines[2], "[▣]"))
	assert.Contains(t, lines[1], "1.50")
	assert.True(t, strings.HasSuffix(lines[2], "out of stock"))
	assert.Equal(t, "Page 1 of 1, 2 products", lines[3])
	// columns line up even with multi-byte names
	col := func(line, cell string) int { return runewidth.StringWidth(line[:strings.Index(line, cell)]) }
	assert.Equal(t, col(lines[1], "CAF-1"), col(lines[2], "BRD-1"))
}

func TestRenderPage_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, catalog.EmptyPage(10), nil))
	assert.Equal(t, "No products found\nPage 1 of 1, 0 products\n", buf.String())
}

func TestRenderStats(t *testing.T) {
	stats := catalog.Stats{
		TotalProducts:  3,
		InStock:        2,
		OutOfStock:     1,
		LowStock:       1,
		TotalUnits:     23,
		InventoryValue: decimal.NewFromInt(55),
		CostValue:      decimal.NewFromInt(32),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, stats))
	assert.Equal(t,
		"Products: 3  In stock: 2  Low stock: 1  Out of stock: 1  Inventory value: 55.00\n"+
			"Units: 23  Cost value: 32.00  Potential profit: 23.00\n",
		buf.String())
}

func TestRenderCategories(t *testing.T) {
	categories := []catalog.Category{
		{Name: "Coffee", Color: "#eb445a", ProductCount: 12, IsActive: true},
		{Name: "bakery", ProductCount: 0, IsActive: false},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCategories(&buf, categories))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "[C]"))
	assert.Contains(t, lines[1], "#eb445a")
	assert.True(t, strings.HasPrefix(lines[2], "[B]"))
	assert.Contains(t, lines[2], identity.ColorFor("bakery").Hex)
	assert.True(t, strings.HasSuffix(lines[2], "inactive"))

	buf.Reset()
	require.NoError(t, RenderCategories(&buf, nil))
	assert.Equal(t, "No categories found\n", buf.String())
}

func TestRenderCategoryStats(t *testing.T) {
	report := []catalog.CategoryStats{
		{Category: catalog.Category{Name: "Coffee"}, ProductCount: 2, TotalStock: 15, TotalValue: decimal.NewFromInt(35)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCategoryStats(&buf, report))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "[C]"))
	assert.True(t, strings.HasSuffix(lines[1], "35.00"))
	assert.Contains(t, lines[1], "15")

	buf.Reset()
	require.NoError(t, RenderCategoryStats(&buf, nil))
	assert.Equal(t, "No stocked categories\n", buf.String())
}

func TestStatusLabel(t *testing.T) {
	base := catalog.Product{Stock: 50, LowStockThreshold: 10, IsActive: true}
	assert.Equal(t, "active", StatusLabel(base))

	low := base
	low.Stock = 5
	assert.Equal(t, "low stock", StatusLabel(low))

	out := base
	out.Stock = 0
	assert.Equal(t, "out of stock", StatusLabel(out))

	inactive := base
	inactive.IsActive = false
	assert.Equal(t, "inactive", StatusLabel(inactive))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitRejected, ExitCode(shared.NewDomainError(shared.CodeValidation, "Row 4 invalid")))
	assert.Equal(t, ExitNetwork, ExitCode(shared.ErrMissingToken))
	assert.Equal(t, ExitPrint, ExitCode(shared.ErrPrintDispatchFailed))
	assert.Equal(t, ExitCancelled, ExitCode(shared.ErrCancelled))
	assert.Equal(t, ExitCancelled, ExitCode(ErrNoAnswer))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}
