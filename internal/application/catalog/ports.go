package catalog

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/printing"
)

// CatalogAPI is the server side of the catalog. Mutations return the server's
// message on success.
type CatalogAPI interface {
	List(ctx context.Context, q catalog.ListQuery) (catalog.Page, error)
	Stats(ctx context.Context) (catalog.Stats, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
	Create(ctx context.Context, fields catalog.ProductFields) (string, error)
	Update(ctx context.Context, id uuid.UUID, fields catalog.ProductFields) (string, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
	Toggle(ctx context.Context, id uuid.UUID) (string, error)
	Bulk(ctx context.Context, ids []uuid.UUID, action catalog.BulkAction) (string, error)
	Export(ctx context.Context, kind catalog.FileKind, w io.Writer) (int64, error)
	ExportURL(kind catalog.FileKind) string
	Import(ctx context.Context, kind catalog.FileKind, file catalog.Attachment) (string, error)
}

// SymbolEncoder turns a product code into a printable barcode
type SymbolEncoder interface {
	Encode(value string, format printing.BarcodeFormat) (printing.Symbol, error)
}

// LabelPrinter sends an encoded barcode to a printer
type LabelPrinter interface {
	Dispatch(ctx context.Context, symbol printing.Symbol) (*printing.PrintJob, error)
}

// AttachmentOptimizer may shrink an image before upload
type AttachmentOptimizer interface {
	Optimize(a *catalog.Attachment) (*catalog.Attachment, error)
}

// Confirmation is a yes/no question put to the operator
type Confirmation struct {
	Title   string
	Message string
}

// Confirmer asks the operator before destructive requests.
// It blocks until the operator answers or ctx is done.
type Confirmer interface {
	Confirm(ctx context.Context, c Confirmation) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, c Confirmation) (bool, error)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, c Confirmation) (bool, error) {
	return f(ctx, c)
}
