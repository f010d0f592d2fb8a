package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/printing"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/barcode"
	printinfra "github.com/ERPlora/module-inventory/internal/infrastructure/printing"
)

// MockSurface is a mock implementation of printinfra.Surface
type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) Open(ctx context.Context, doc *printinfra.Document) (*printinfra.SurfaceResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printinfra.SurfaceResult), args.Error(1)
}

func newLabelController(t *testing.T, probe printinfra.Probe, surface printinfra.Surface) (*Controller, *recorder) {
	t.Helper()
	encoder, err := barcode.NewEncoder(barcode.DefaultConfig())
	require.NoError(t, err)
	dispatcher, err := printinfra.NewDispatcher(printinfra.DispatcherConfig{
		Probe:   probe,
		Surface: surface,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	rec := &recorder{}
	c, err := NewController(Config{
		API:       new(MockCatalogAPI),
		Encoder:   encoder,
		Printer:   dispatcher,
		Notifier:  rec,
		Confirmer: answer(true),
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return c, rec
}

func TestPrintBarcode(t *testing.T) {
	ctx := context.Background()
	product := products(1)[0]

	t.Run("without a bridge the label is opened for printing", func(t *testing.T) {
		surface := new(MockSurface)
		surface.On("Open", mock.Anything, mock.MatchedBy(func(doc *printinfra.Document) bool {
			return doc.Title == "Code 128 SKU-001"
		})).Return(&printinfra.SurfaceResult{ArchiveURL: "/labels/1.pdf"}, nil).Once()
		c, rec := newLabelController(t, nil, surface)

		job, err := c.PrintBarcode(ctx, product, "")
		require.NoError(t, err)
		assert.Equal(t, printing.JobStatusFallbackOpened, job.Status)
		assert.Equal(t, printing.PathFallback, job.Path)

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelInfo, got[0].Level)
		assert.Equal(t, "Code 128 label for Product 01 opened for printing: /labels/1.pdf", got[0].Message)
		surface.AssertExpectations(t)
	})

	t.Run("native printer success", func(t *testing.T) {
		surface := new(MockSurface)
		bridge := printinfra.BridgeFunc(func(context.Context, string) (printinfra.BridgeResult, error) {
			return printinfra.BridgeResult{Success: true, Message: "queued"}, nil
		})
		c, rec := newLabelController(t, printinfra.StaticProbe(bridge), surface)

		job, err := c.PrintBarcode(ctx, product, printing.FormatCode128)
		require.NoError(t, err)
		assert.Equal(t, printing.JobStatusNativeSuccess, job.Status)
		require.Len(t, rec.all(), 1)
		assert.Equal(t, "Code 128 label for Product 01 sent to the printer (queued)", rec.all()[0].Message)
		surface.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("native printer failure is reported", func(t *testing.T) {
		surface := new(MockSurface)
		bridge := printinfra.BridgeFunc(func(context.Context, string) (printinfra.BridgeResult, error) {
			return printinfra.BridgeResult{Success: false, Message: "Out of paper"}, nil
		})
		c, rec := newLabelController(t, printinfra.StaticProbe(bridge), surface)

		job, err := c.PrintBarcode(ctx, product, printing.FormatCode128)
		assert.True(t, errors.Is(err, shared.ErrPrintDispatchFailed))
		require.NotNil(t, job)
		assert.True(t, job.IsFailed())
		require.Len(t, rec.all(), 1)
		assert.Equal(t, LevelError, rec.all()[0].Level)
		surface.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("bad EAN-13 never reaches the printer", func(t *testing.T) {
		surface := new(MockSurface)
		c, rec := newLabelController(t, nil, surface)

		p := product
		p.EAN13 = "12345678901"
		job, err := c.PrintBarcode(ctx, p, printing.FormatEAN13)
		assert.Nil(t, job)
		assert.True(t, errors.Is(err, shared.ErrInvalidSymbolInput))
		require.Len(t, rec.all(), 1)
		surface.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("product without EAN-13", func(t *testing.T) {
		c, rec := newLabelController(t, nil, new(MockSurface))
		_, err := c.PrintBarcode(ctx, product, printing.FormatEAN13)
		assert.True(t, errors.Is(err, shared.ErrInvalidSymbolInput))
		assert.Equal(t, "Product has no EAN-13 code", rec.all()[0].Message)
	})

	t.Run("not configured", func(t *testing.T) {
		c, rec := newMockController(t, new(MockCatalogAPI), nil)
		_, err := c.PrintBarcode(ctx, product, "")
		assert.Error(t, err)
		assert.Len(t, rec.all(), 1)
	})
}

func TestAvatar(t *testing.T) {
	c, _ := newMockController(t, new(MockCatalogAPI), nil)

	a := c.Avatar(catalog.Product{Name: "espresso"})
	assert.Equal(t, "E", a.Initial)
	assert.False(t, a.HasImage())
	assert.NotEmpty(t, a.Color)

	a = c.Avatar(catalog.Product{Name: "espresso", ImageURL: "/media/espresso.png"})
	assert.True(t, a.HasImage())
}
