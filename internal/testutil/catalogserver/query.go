package catalogserver

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
)

// filterProducts returns the products matching the list filters, keeping
// insertion order so created_at sorting stays meaningful
func filterProducts(products []catalog.Product, search string, status catalog.StatusFilter, category string) []catalog.Product {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(p.EAN13, search) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		switch status {
		case catalog.StatusActive:
			if !p.IsActive {
				continue
			}
		case catalog.StatusInactive:
			if p.IsActive {
				continue
			}
		case catalog.StatusLowStock:
			if !p.IsLowStock() {
				continue
			}
		case catalog.StatusOutOfStock:
			if p.InStock() {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(products []catalog.Product, field catalog.SortField, dir catalog.SortDir) {
	var less func(a, b catalog.Product) int
	switch field {
	case catalog.SortBySKU:
		less = func(a, b catalog.Product) int { return strings.Compare(strings.ToLower(a.SKU), strings.ToLower(b.SKU)) }
	case catalog.SortByPrice:
		less = func(a, b catalog.Product) int { return a.Price.Cmp(b.Price) }
	case catalog.SortByStock:
		less = func(a, b catalog.Product) int { return cmp.Compare(a.Stock, b.Stock) }
	case catalog.SortByCreatedAt:
		// insertion order
		less = func(a, b catalog.Product) int { return 0 }
	default:
		less = func(a, b catalog.Product) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	}
	slices.SortStableFunc(products, less)
	if dir == catalog.SortDesc {
		slices.Reverse(products)
	}
}

// parseCSVImport reads Name, SKU, Price, Cost, Stock columns. Any malformed
// row rejects the whole file, numbered from the first data row.
func parseCSVImport(_ catalog.FileKind, data []byte) ([]catalog.ProductFields, string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, "File is empty or not a valid CSV", false
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, name, def string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			if v := strings.TrimSpace(rec[i]); v != "" {
				return v
			}
		}
		return def
	}

	var rows []catalog.ProductFields
	for n := 1; ; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Sprintf("Row %d invalid", n), false
		}
		f, ok := rowFields(rec, get)
		if !ok {
			return nil, fmt.Sprintf("Row %d invalid", n), false
		}
		rows = append(rows, f)
	}
	if len(rows) == 0 {
		return nil, "No rows to import", false
	}
	return rows, fmt.Sprintf("Imported %d products", len(rows)), true
}

func rowFields(rec []string, get func([]string, string, string) string) (catalog.ProductFields, bool) {
	price, err := decimal.NewFromString(get(rec, "price", "0"))
	if err != nil {
		return catalog.ProductFields{}, false
	}
	cost, err := decimal.NewFromString(get(rec, "cost", "0"))
	if err != nil {
		return catalog.ProductFields{}, false
	}
	stock, err := strconv.ParseFloat(get(rec, "stock", "0"), 64)
	if err != nil {
		return catalog.ProductFields{}, false
	}
	threshold, err := strconv.ParseFloat(get(rec, "low stock threshold", "10"), 64)
	if err != nil {
		return catalog.ProductFields{}, false
	}

	f := catalog.NewProductFields(get(rec, "name", ""), get(rec, "sku", ""), price)
	f.Cost = cost
	f.Stock = int(stock)
	f.LowStockThreshold = int(threshold)
	f.EAN13 = get(rec, "ean-13", "")
	f.Category = get(rec, "category", catalog.DefaultCategory)
	f = f.Normalize()
	if f.Validate() != nil {
		return catalog.ProductFields{}, false
	}
	return f, true
}
