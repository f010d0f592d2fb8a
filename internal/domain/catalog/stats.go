package catalog

import "github.com/shopspring/decimal"

// Stats is the read-only summary shown above the product list
type Stats struct {
	TotalProducts  int             `json:"total_products"`
	InStock        int             `json:"in_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	LowStock       int             `json:"low_stock"`
	TotalUnits     int             `json:"total_units"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	CostValue      decimal.Decimal `json:"cost_value"`
}

// PotentialProfit is the margin locked in the current stock
func (s Stats) PotentialProfit() decimal.Decimal {
	return s.InventoryValue.Sub(s.CostValue)
}

// ComputeStats derives the summary from active products
func ComputeStats(products []Product) Stats {
	stats := Stats{InventoryValue: decimal.Zero, CostValue: decimal.Zero}
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		stats.TotalProducts++
		if p.InStock() {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
		if p.IsLowStock() {
			stats.LowStock++
		}
		stats.TotalUnits += p.Stock
		stats.InventoryValue = stats.InventoryValue.Add(p.StockValue())
		stats.CostValue = stats.CostValue.Add(p.CostValue())
	}
	return stats
}

// CategoryStats summarizes the active products filed under one category
type CategoryStats struct {
	Category     Category        `json:"category"`
	ProductCount int             `json:"product_count"`
	TotalStock   int             `json:"total_stock"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// ComputeCategoryStats groups active products by category, in category
// order. Categories without products are left out.
func ComputeCategoryStats(categories []Category, products []Product) []CategoryStats {
	out := make([]CategoryStats, 0, len(categories))
	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}
		row := CategoryStats{Category: cat, TotalValue: decimal.Zero}
		for _, p := range products {
			if !p.IsActive || !cat.Matches(p) {
				continue
			}
			row.ProductCount++
			row.TotalStock += p.Stock
			row.TotalValue = row.TotalValue.Add(p.StockValue())
		}
		if row.ProductCount > 0 {
			out = append(out, row)
		}
	}
	return out
}
