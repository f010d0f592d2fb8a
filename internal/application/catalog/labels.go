package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/identity"
	"github.com/ERPlora/module-inventory/internal/domain/printing"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
)

// PrintBarcode encodes the product's SKU (code128) or EAN-13 and prints it.
// Encoding problems are reported before the printer is touched. The outcome
// is shown in a single notification.
func (c *Controller) PrintBarcode(ctx context.Context, product catalog.Product, format printing.BarcodeFormat) (*printing.PrintJob, error) {
	if c.encoder == nil || c.printer == nil {
		err := errors.New("barcode printing is not configured")
		c.notify(ctx, LevelError, OpPrint, err.Error(), err)
		return nil, err
	}
	if format == "" {
		format = printing.DefaultFormat
	}

	value := product.SKU
	if format == printing.FormatEAN13 {
		if strings.TrimSpace(product.EAN13) == "" {
			err := shared.NewDomainError(shared.CodeInvalidSymbolInput, "Product has no EAN-13 code")
			c.notify(ctx, LevelError, OpPrint, err.Error(), err)
			return nil, err
		}
		value = product.EAN13
	}

	symbol, err := c.encoder.Encode(value, format)
	if err != nil {
		c.notify(ctx, LevelError, OpPrint, err.Error(), err)
		return nil, err
	}

	job, err := c.printer.Dispatch(ctx, symbol)
	if err != nil {
		c.notify(ctx, LevelError, OpPrint, err.Error(), err)
		return job, err
	}

	logger.For(ctx, c.logger).Info("Barcode printed",
		zap.String("sku", product.SKU),
		zap.String("format", format.String()),
		zap.String("status", job.Status.String()))

	switch job.Status {
	case printing.JobStatusNativeSuccess:
		msg := fmt.Sprintf("%s label for %s sent to the printer", format.DisplayName(), product.Name)
		if job.Message != "" {
			msg += " (" + job.Message + ")"
		}
		c.notify(ctx, LevelSuccess, OpPrint, msg, nil)
	default:
		msg := fmt.Sprintf("%s label for %s opened for printing", format.DisplayName(), product.Name)
		if job.ArchiveURL != "" {
			msg += ": " + job.ArchiveURL
		}
		c.notify(ctx, LevelInfo, OpPrint, msg, nil)
	}
	return job, nil
}

// Avatar returns the list-row avatar for product
func (c *Controller) Avatar(product catalog.Product) identity.Avatar {
	return identity.Render(product.Name, identity.WithImage(product.ImageURL))
}
