package catalog

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/infrastructure/catalogapi"
	"github.com/ERPlora/module-inventory/internal/testutil/catalogserver"
)

// MockCatalogAPI is a mock implementation of CatalogAPI
type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) List(ctx context.Context, q catalog.ListQuery) (catalog.Page, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(catalog.Page), args.Error(1)
}

func (m *MockCatalogAPI) Stats(ctx context.Context) (catalog.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.Stats), args.Error(1)
}

func (m *MockCatalogAPI) Categories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]catalog.Category)
	return categories, args.Error(1)
}

func (m *MockCatalogAPI) Create(ctx context.Context, fields catalog.ProductFields) (string, error) {
	args := m.Called(ctx, fields)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogAPI) Update(ctx context.Context, id uuid.UUID, fields catalog.ProductFields) (string, error) {
	args := m.Called(ctx, id, fields)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogAPI) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogAPI) Toggle(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogAPI) Bulk(ctx context.Context, ids []uuid.UUID, action catalog.BulkAction) (string, error) {
	args := m.Called(ctx, ids, action)
	return args.String(0), args.Error(1)
}

func (m *MockCatalogAPI) Export(ctx context.Context, kind catalog.FileKind, w io.Writer) (int64, error) {
	args := m.Called(ctx, kind, w)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogAPI) ExportURL(kind catalog.FileKind) string {
	args := m.Called(kind)
	return args.String(0)
}

func (m *MockCatalogAPI) Import(ctx context.Context, kind catalog.FileKind, file catalog.Attachment) (string, error) {
	args := m.Called(ctx, kind, file)
	return args.String(0), args.Error(1)
}

// recorder collects notifications
type recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

func answer(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, Confirmation) (bool, error) {
		return yes, nil
	})
}

func products(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		out[i] = catalog.Product{
			ID:                uuid.New(),
			Name:              fmt.Sprintf("Product %02d", i+1),
			SKU:               fmt.Sprintf("SKU-%03d", i+1),
			Category:          catalog.DefaultCategory,
			Price:             decimal.NewFromInt(3),
			Stock:             20,
			LowStockThreshold: catalog.DefaultLowStockThreshold,
			IsActive:          true,
		}
	}
	return out
}

// pageOf returns page p of a catalog of total items
func pageOf(p, perPage, total int) catalog.Page {
	pages := catalog.TotalPages(total, perPage)
	p = catalog.ClampPage(p, pages)
	count := min(perPage, max(total-(p-1)*perPage, 0))
	return catalog.NewPage(products(count), p, perPage, total)
}

func newMockController(t *testing.T, api CatalogAPI, confirmer Confirmer) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	if confirmer == nil {
		confirmer = answer(true)
	}
	c, err := NewController(Config{
		API:       api,
		Notifier:  rec,
		Confirmer: confirmer,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return c, rec
}

// newServerController wires a controller to the in-memory catalog server
// through the real HTTP client
func newServerController(t *testing.T, confirmer Confirmer, opts ...catalogserver.Option) (*Controller, *recorder, *catalogserver.Server) {
	t.Helper()
	srv, ts := catalogserver.Start(t, opts...)
	client, err := catalogapi.NewClient(catalogapi.Config{
		BaseURL: ts.URL + srv.BasePath(),
		Timeout: 5 * time.Second,
		Tokens:  catalogapi.StaticToken(srv.Token()),
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	c, rec := newMockController(t, client, confirmer)
	return c, rec, srv
}

// MockOptimizer is a mock implementation of AttachmentOptimizer
type MockOptimizer struct {
	mock.Mock
}

func (m *MockOptimizer) Optimize(a *catalog.Attachment) (*catalog.Attachment, error) {
	args := m.Called(a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Attachment), args.Error(1)
}
