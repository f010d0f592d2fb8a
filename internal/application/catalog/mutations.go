package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
)

// CreateProduct validates and submits a new product, then refreshes the list.
// Server rejections are shown verbatim and never retried.
func (c *Controller) CreateProduct(ctx context.Context, fields catalog.ProductFields) error {
	fields, err := c.prepare(ctx, fields)
	if err != nil {
		c.notify(ctx, LevelError, OpCreate, err.Error(), err)
		return err
	}
	msg, err := c.api.Create(ctx, fields)
	if err != nil {
		c.notify(ctx, LevelError, OpCreate, err.Error(), err)
		return err
	}
	return c.refresh(ctx, OpCreate, orDefault(msg, "Product created"), false)
}

// UpdateProduct validates and submits changes to a product, then refreshes
func (c *Controller) UpdateProduct(ctx context.Context, id uuid.UUID, fields catalog.ProductFields) error {
	if id == uuid.Nil {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Product ID is required")
		c.notify(ctx, LevelError, OpUpdate, err.Error(), err)
		return err
	}
	fields, err := c.prepare(ctx, fields)
	if err != nil {
		c.notify(ctx, LevelError, OpUpdate, err.Error(), err)
		return err
	}
	msg, err := c.api.Update(ctx, id, fields)
	if err != nil {
		c.notify(ctx, LevelError, OpUpdate, err.Error(), err)
		return err
	}
	return c.refresh(ctx, OpUpdate, orDefault(msg, "Product updated"), false)
}

// prepare normalizes and validates the form and shrinks the image
func (c *Controller) prepare(ctx context.Context, fields catalog.ProductFields) (catalog.ProductFields, error) {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return fields, err
	}
	if c.images != nil && fields.Image != nil {
		img, err := c.images.Optimize(fields.Image)
		if err != nil {
			return fields, err
		}
		if img != fields.Image {
			logger.For(ctx, c.logger).Debug("Image attachment optimized",
				zap.Int("original_bytes", len(fields.Image.Data)),
				zap.Int("bytes", len(img.Data)))
		}
		fields.Image = img
	}
	return fields, nil
}

// DeleteProduct asks for confirmation and deletes the product. Declining
// returns ErrCancelled without a request or notification. If the deletion
// empties a page beyond the first, the previous page is shown instead.
func (c *Controller) DeleteProduct(ctx context.Context, product catalog.Product) error {
	ok, err := c.confirm(ctx, OpDelete, Confirmation{
		Title:   "Delete product",
		Message: fmt.Sprintf("Delete %s (%s)? This cannot be undone.", product.Name, product.SKU),
	})
	if err != nil || !ok {
		return err
	}
	msg, err := c.api.Delete(ctx, product.ID)
	if err != nil {
		c.notify(ctx, LevelError, OpDelete, err.Error(), err)
		return err
	}
	return c.refresh(ctx, OpDelete, orDefault(msg, "Product deleted"), true)
}

// ToggleStatus flips a product between active and inactive
func (c *Controller) ToggleStatus(ctx context.Context, product catalog.Product) error {
	msg, err := c.api.Toggle(ctx, product.ID)
	if err != nil {
		c.notify(ctx, LevelError, OpToggle, err.Error(), err)
		return err
	}
	// Under a status filter the product may leave the page
	return c.refresh(ctx, OpToggle, orDefault(msg, "Product status changed"), true)
}

// BulkAction applies action to several products. Deleting asks for
// confirmation first.
func (c *Controller) BulkAction(ctx context.Context, ids []uuid.UUID, action catalog.BulkAction) error {
	if !action.IsValid() {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Unknown bulk action: "+string(action))
		c.notify(ctx, LevelError, OpBulk, err.Error(), err)
		return err
	}
	if len(ids) == 0 {
		err := shared.NewDomainError(shared.CodeInvalidInput, "No products selected")
		c.notify(ctx, LevelError, OpBulk, err.Error(), err)
		return err
	}
	if action.IsDestructive() {
		ok, err := c.confirm(ctx, OpBulk, Confirmation{
			Title:   "Delete products",
			Message: fmt.Sprintf("Delete %d selected products? This cannot be undone.", len(ids)),
		})
		if err != nil || !ok {
			return err
		}
	}
	msg, err := c.api.Bulk(ctx, ids, action)
	if err != nil {
		c.notify(ctx, LevelError, OpBulk, err.Error(), err)
		return err
	}
	return c.refresh(ctx, OpBulk, orDefault(msg, "Products updated"), true)
}

// ExportCSV streams the catalog as CSV into w
func (c *Controller) ExportCSV(ctx context.Context, w io.Writer) (int64, error) {
	return c.Export(ctx, catalog.FileCSV, w)
}

// Export streams the catalog into w. It does not touch the list state.
func (c *Controller) Export(ctx context.Context, kind catalog.FileKind, w io.Writer) (int64, error) {
	n, err := c.api.Export(ctx, kind, w)
	if err != nil {
		c.notify(ctx, LevelError, OpExport, err.Error(), err)
		return n, err
	}
	c.notify(ctx, LevelSuccess, OpExport, fmt.Sprintf("Exported %d bytes", n), nil)
	return n, nil
}

// ExportURL returns the download address for kind
func (c *Controller) ExportURL(kind catalog.FileKind) string {
	return c.api.ExportURL(kind)
}

// ImportFile uploads a spreadsheet. The server applies it all or nothing: on
// failure its message is shown verbatim and the list is left alone, on success
// the list is refreshed and the server summary is shown.
func (c *Controller) ImportFile(ctx context.Context, file catalog.Attachment, kind catalog.FileKind) error {
	if !kind.IsValid() {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Unsupported import format: "+string(kind))
		c.notify(ctx, LevelError, OpImport, err.Error(), err)
		return err
	}
	msg, err := c.api.Import(ctx, kind, file)
	if err != nil {
		c.notify(ctx, LevelError, OpImport, err.Error(), err)
		return err
	}
	return c.refresh(ctx, OpImport, orDefault(msg, "Import completed"), false)
}

// confirm asks the operator. A declined question yields ErrCancelled and no
// notification; a broken confirmer is reported once.
func (c *Controller) confirm(ctx context.Context, op string, q Confirmation) (bool, error) {
	ok, err := c.confirmer.Confirm(ctx, q)
	if err != nil {
		c.notify(ctx, LevelError, op, "Confirmation failed: "+err.Error(), err)
		return false, err
	}
	if !ok {
		logger.For(ctx, c.logger).Debug("Operation cancelled by the user", zap.String("operation", op))
		return false, shared.ErrCancelled
	}
	return true, nil
}

// refresh reloads after a successful mutation and shows its single
// notification: success, or a warning when the reload failed.
// removal steps back from pages the mutation may have emptied.
func (c *Controller) refresh(ctx context.Context, op, message string, removal bool) error {
	_, err := c.load(ctx, c.Query(), loadOptions{stepBack: removal})

	switch {
	case err == nil, errors.Is(err, shared.ErrSuperseded):
		c.notify(ctx, LevelSuccess, op, message, nil)
		return nil
	default:
		c.notify(ctx, LevelWarning, op, message+", but the list could not be refreshed: "+err.Error(), err)
		return err
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
