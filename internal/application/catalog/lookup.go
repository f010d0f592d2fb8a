package catalog

import (
	"context"
	"strings"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

// FindBySKU searches for sku and returns the product whose SKU equals it,
// ignoring case. The search also matches names, so every result page is
// checked. A missing product is reported once as invalid input.
func (c *Controller) FindBySKU(ctx context.Context, sku string) (catalog.Product, error) {
	sku = strings.TrimSpace(sku)
	page, err := c.Search(ctx, sku)
	if err != nil {
		return catalog.Product{}, err
	}
	for {
		for _, p := range page.Products {
			if strings.EqualFold(p.SKU, sku) {
				return p, nil
			}
		}
		if !page.HasNext() {
			break
		}
		if page, err = c.NextPage(ctx); err != nil {
			return catalog.Product{}, err
		}
	}
	err = shared.NewDomainError(shared.CodeInvalidInput, "No product with SKU "+sku)
	c.notify(ctx, LevelError, OpLoad, err.Error(), err)
	return catalog.Product{}, err
}
