package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/identity"
)

// maxNameWidth truncates long product names in the table
const maxNameWidth = 32

var (
	tableHeader    = []string{"", "NAME", "SKU", "CATEGORY", "PRICE", "STOCK", "STATUS"}
	categoryHeader = []string{"", "NAME", "COLOR", "PRODUCTS", "STATUS"}
	reportHeader   = []string{"", "CATEGORY", "PRODUCTS", "UNITS", "VALUE"}
)

// AvatarFunc returns the avatar shown in front of a product
type AvatarFunc func(catalog.Product) identity.Avatar

// RenderPage writes the product table followed by the pagination footer
func RenderPage(w io.Writer, page catalog.Page, avatar AvatarFunc) error {
	if avatar == nil {
		avatar = func(p catalog.Product) identity.Avatar { return identity.Render(p.Name) }
	}

	rows := make([][]string, 0, len(page.Products)+1)
	rows = append(rows, tableHeader)
	for _, p := range page.Products {
		rows = append(rows, []string{
			avatarCell(avatar(p)),
			runewidth.Truncate(p.Name, maxNameWidth, "…"),
			p.SKU,
			p.Category,
			p.Price.StringFixed(2),
			fmt.Sprint(p.Stock),
			StatusLabel(p),
		})
	}

	var b strings.Builder
	if page.IsEmpty() {
		b.WriteString("No products found\n")
	} else {
		writeRows(&b, rows)
	}
	fmt.Fprintf(&b, "Page %d of %d, %d products\n", page.CurrentPage, max(page.Pages, 1), page.Total)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderStats writes the summary lines shown above the table
func RenderStats(w io.Writer, stats catalog.Stats) error {
	_, err := fmt.Fprintf(w, "Products: %d  In stock: %d  Low stock: %d  Out of stock: %d  Inventory value: %s\n"+
		"Units: %d  Cost value: %s  Potential profit: %s\n",
		stats.TotalProducts, stats.InStock, stats.LowStock, stats.OutOfStock, stats.InventoryValue.StringFixed(2),
		stats.TotalUnits, stats.CostValue.StringFixed(2), stats.PotentialProfit().StringFixed(2))
	return err
}

// RenderCategories writes the category table
func RenderCategories(w io.Writer, categories []catalog.Category) error {
	var b strings.Builder
	if len(categories) == 0 {
		b.WriteString("No categories found\n")
	} else {
		rows := make([][]string, 0, len(categories)+1)
		rows = append(rows, categoryHeader)
		for _, cat := range categories {
			a := cat.Avatar()
			status := "active"
			if !cat.IsActive {
				status = "inactive"
			}
			rows = append(rows, []string{
				avatarCell(a),
				runewidth.Truncate(cat.Name, maxNameWidth, "…"),
				a.Color,
				fmt.Sprint(cat.ProductCount),
				status,
			})
		}
		writeRows(&b, rows)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCategoryStats writes units and stock value per category
func RenderCategoryStats(w io.Writer, report []catalog.CategoryStats) error {
	var b strings.Builder
	if len(report) == 0 {
		b.WriteString("No stocked categories\n")
	} else {
		rows := make([][]string, 0, len(report)+1)
		rows = append(rows, reportHeader)
		for _, r := range report {
			rows = append(rows, []string{
				avatarCell(r.Category.Avatar()),
				runewidth.Truncate(r.Category.Name, maxNameWidth, "…"),
				fmt.Sprint(r.ProductCount),
				fmt.Sprint(r.TotalStock),
				r.TotalValue.StringFixed(2),
			})
		}
		writeRows(&b, rows)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// StatusLabel describes the availability of p
func StatusLabel(p catalog.Product) string {
	switch {
	case !p.IsActive:
		return "inactive"
	case p.IsService():
		return "active"
	case !p.InStock():
		return "out of stock"
	case p.IsLowStock():
		return "low stock"
	default:
		return "active"
	}
}

func avatarCell(a identity.Avatar) string {
	if a.HasImage() {
		return "[▣]"
	}
	return "[" + a.Initial + "]"
}

// writeRows pads every column to its widest cell, measured in terminal cells
func writeRows(b *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(row)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString("\n")
	}
}
