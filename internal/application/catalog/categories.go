package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/identity"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
)

// LoadCategories replaces the category list used by the category filter.
// On failure the previous list stays and one error notification is shown.
func (c *Controller) LoadCategories(ctx context.Context) ([]catalog.Category, error) {
	categories, err := c.api.Categories(ctx)
	if err != nil {
		logger.For(ctx, c.logger).Warn("Loading categories failed", zap.Error(err))
		c.notify(ctx, LevelError, OpCategories, err.Error(), err)
		return nil, err
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return categories, nil
}

// CategoryAvatar returns the badge for category, drawn in its own color
// when it has one
func (c *Controller) CategoryAvatar(category catalog.Category) identity.Avatar {
	return category.Avatar()
}

// ProductCategory finds the loaded category a product is filed under
func (c *Controller) ProductCategory(product catalog.Product) (catalog.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.categories {
		if cat.Matches(product) {
			return cat, true
		}
	}
	return catalog.Category{}, false
}

// reportPerPage is the page size used to read the whole catalog
const reportPerPage = 100

// CategoryReport totals the active products of each active category. It
// reads the catalog page by page and leaves the list state alone. A failure
// shows one error notification.
func (c *Controller) CategoryReport(ctx context.Context) ([]catalog.CategoryStats, error) {
	categories, err := c.LoadCategories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := c.activeProducts(ctx)
	if err != nil {
		logger.For(ctx, c.logger).Warn("Reading the catalog failed", zap.Error(err))
		c.notify(ctx, LevelError, OpCategories, err.Error(), err)
		return nil, err
	}
	return catalog.ComputeCategoryStats(categories, products), nil
}

func (c *Controller) activeProducts(ctx context.Context) ([]catalog.Product, error) {
	q := catalog.DefaultListQuery()
	q.PerPage = reportPerPage
	q.Status = catalog.StatusActive

	var out []catalog.Product
	for {
		page, err := c.api.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Products...)
		// a clamping server keeps answering the last page
		if page.IsEmpty() || page.CurrentPage >= page.Pages || page.CurrentPage < q.Page {
			return out, nil
		}
		q.Page = page.CurrentPage + 1
	}
}
