package catalog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/testutil/catalogserver"
)

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("successful create shows one notification and refreshes", func(t *testing.T) {
		c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(products(3)...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)

		err = c.CreateProduct(ctx, catalog.NewProductFields(" Oat Milk ", "OAT-1", decimal.RequireFromString("2.50")))
		require.NoError(t, err)

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelSuccess, got[0].Level)
		assert.Equal(t, "Product created", got[0].Message)
		assert.True(t, c.Page().Contains("OAT-1"))
		assert.Equal(t, 4, c.Page().Total)
		assert.Equal(t, 1, srv.CallCount("POST /create"))
	})

	t.Run("local validation failure sends nothing", func(t *testing.T) {
		api := new(MockCatalogAPI)
		c, rec := newMockController(t, api, nil)

		fields := catalog.NewProductFields("", "SKU-1", decimal.NewFromInt(-1))
		err := c.CreateProduct(ctx, fields)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelError, got[0].Level)
		assert.Contains(t, got[0].Message, "Name is required")
		api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("server rejection is shown verbatim", func(t *testing.T) {
		seed := products(1)
		c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(seed...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		before := c.State()

		err = c.CreateProduct(ctx, catalog.NewProductFields("Copy", seed[0].SKU, decimal.NewFromInt(1)))
		assert.True(t, errors.Is(err, shared.ErrValidation))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelError, got[0].Level)
		assert.Equal(t, "Product with this SKU already exists.", got[0].Message)
		assert.Equal(t, before, c.State())
		// no refresh after a rejection
		assert.Equal(t, 1, srv.CallCount("GET /list"))
	})

	t.Run("failed refresh turns into a warning", func(t *testing.T) {
		c, rec, srv := newServerController(t, nil)
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)

		srv.FailNext("list", 1)
		err = c.CreateProduct(ctx, catalog.NewProductFields("Tea", "TEA-1", decimal.NewFromInt(2)))
		assert.True(t, errors.Is(err, shared.ErrNetwork))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelWarning, got[0].Level)
		assert.True(t, strings.HasPrefix(got[0].Message, "Product created, but the list could not be refreshed"))
		assert.Len(t, srv.Products(), 1)
	})

	t.Run("image is optimized before upload", func(t *testing.T) {
		api := new(MockCatalogAPI)
		images := new(MockOptimizer)
		rec := &recorder{}
		c, err := NewController(Config{API: api, Images: images, Notifier: rec, Confirmer: answer(true)})
		require.NoError(t, err)

		original := &catalog.Attachment{Filename: "big.png", ContentType: "image/png", Data: []byte("big")}
		small := &catalog.Attachment{Filename: "big.png", ContentType: "image/png", Data: []byte("s")}
		images.On("Optimize", original).Return(small, nil).Once()
		api.On("Create", mock.Anything, mock.MatchedBy(func(f catalog.ProductFields) bool {
			return f.Image == small
		})).Return("Product created", nil).Once()
		api.On("List", mock.Anything, mock.Anything).Return(pageOf(1, 10, 1), nil)
		api.On("Stats", mock.Anything).Return(catalog.Stats{}, nil)

		fields := catalog.NewProductFields("Jam", "JAM-1", decimal.NewFromInt(4))
		fields.Image = original
		require.NoError(t, c.CreateProduct(ctx, fields))
		images.AssertExpectations(t)
		api.AssertExpectations(t)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	seed := products(2)
	c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(seed...))
	_, err := c.LoadProducts(ctx)
	require.NoError(t, err)

	t.Run("requires an id", func(t *testing.T) {
		rec.reset()
		err := c.UpdateProduct(ctx, uuid.Nil, seed[0].Fields())
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Len(t, rec.all(), 1)
	})

	t.Run("updates and refreshes", func(t *testing.T) {
		rec.reset()
		fields := seed[0].Fields()
		fields.Stock = 2
		require.NoError(t, c.UpdateProduct(ctx, seed[0].ID, fields))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, "Product updated", got[0].Message)
		assert.Equal(t, 2, c.Page().Products[0].Stock)
		assert.Equal(t, 1, srv.CallCount("POST /edit/"+seed[0].ID.String()))
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("declined confirmation sends nothing", func(t *testing.T) {
		api := new(MockCatalogAPI)
		var asked Confirmation
		confirmer := ConfirmFunc(func(_ context.Context, q Confirmation) (bool, error) {
			asked = q
			return false, nil
		})
		c, rec := newMockController(t, api, confirmer)
		p := products(1)[0]

		err := c.DeleteProduct(ctx, p)
		assert.True(t, errors.Is(err, shared.ErrCancelled))
		assert.Equal(t, "Delete Product 01 (SKU-001)? This cannot be undone.", asked.Message)
		assert.Empty(t, rec.all())
		api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("broken confirmer is reported", func(t *testing.T) {
		api := new(MockCatalogAPI)
		confirmer := ConfirmFunc(func(context.Context, Confirmation) (bool, error) {
			return false, errors.New("stdin closed")
		})
		c, rec := newMockController(t, api, confirmer)

		err := c.DeleteProduct(ctx, products(1)[0])
		assert.Error(t, err)
		require.Len(t, rec.all(), 1)
		assert.Equal(t, LevelError, rec.all()[0].Level)
		api.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("last item of a page steps back", func(t *testing.T) {
		c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(products(21)...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		page, err := c.GoToPage(ctx, 3)
		require.NoError(t, err)
		require.Len(t, page.Products, 1)

		require.NoError(t, c.DeleteProduct(ctx, page.Products[0]))

		st := c.State()
		assert.Equal(t, 2, st.Query.Page)
		assert.Equal(t, 2, st.Page.CurrentPage)
		assert.Equal(t, 2, st.Page.Pages)
		assert.Len(t, st.Page.Products, 10)
		assert.Len(t, srv.Products(), 20)

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelSuccess, got[0].Level)
		assert.Equal(t, "Product deleted", got[0].Message)
	})

	t.Run("steps back when the server does not clamp", func(t *testing.T) {
		api := new(MockCatalogAPI)
		c, rec := newMockController(t, api, nil)
		api.On("Stats", mock.Anything).Return(catalog.Stats{}, nil)
		api.On("List", mock.Anything, pageIs(1)).Return(pageOf(1, 10, 21), nil).Once()
		last := catalog.NewPage(products(1), 3, 10, 21)
		api.On("List", mock.Anything, pageIs(3)).Return(last, nil).Once()
		api.On("List", mock.Anything, pageIs(3)).Return(catalog.Page{CurrentPage: 3, PerPage: 10, Total: 20, Pages: 2}, nil).Once()
		api.On("List", mock.Anything, pageIs(2)).Return(pageOf(2, 10, 20), nil).Once()
		api.On("Delete", mock.Anything, last.Products[0].ID).Return("Product deleted", nil).Once()

		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		_, err = c.GoToPage(ctx, 3)
		require.NoError(t, err)

		require.NoError(t, c.DeleteProduct(ctx, last.Products[0]))
		assert.Equal(t, 2, c.Page().CurrentPage)
		assert.Len(t, c.Page().Products, 10)
		assert.Len(t, rec.all(), 1)
		api.AssertExpectations(t)
	})

	t.Run("failed step back keeps the previous page", func(t *testing.T) {
		api := new(MockCatalogAPI)
		c, rec := newMockController(t, api, nil)
		api.On("Stats", mock.Anything).Return(catalog.Stats{}, nil)
		api.On("List", mock.Anything, pageIs(1)).Return(pageOf(1, 10, 21), nil).Once()
		last := catalog.NewPage(products(1), 3, 10, 21)
		api.On("List", mock.Anything, pageIs(3)).Return(last, nil).Once()
		// clamped page number, rows from the requested page
		api.On("List", mock.Anything, pageIs(3)).Return(catalog.NewPage(nil, 3, 10, 20), nil).Once()
		netErr := shared.NewDomainError(shared.CodeNetwork, "Could not reach the catalog server")
		api.On("List", mock.Anything, pageIs(2)).Return(catalog.Page{}, netErr).Once()
		api.On("Delete", mock.Anything, last.Products[0].ID).Return("Product deleted", nil).Once()

		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		_, err = c.GoToPage(ctx, 3)
		require.NoError(t, err)
		before := c.State()

		err = c.DeleteProduct(ctx, last.Products[0])
		assert.True(t, errors.Is(err, shared.ErrNetwork))
		assert.Equal(t, before, c.State())
		assert.Equal(t, 3, c.Page().CurrentPage)
		assert.Len(t, c.Page().Products, 1)

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelWarning, got[0].Level)
		assert.Contains(t, got[0].Message, "could not be refreshed")
		api.AssertExpectations(t)
	})
}

func TestToggleStatus(t *testing.T) {
	ctx := context.Background()
	seed := products(1)
	c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(seed...))
	_, err := c.LoadProducts(ctx)
	require.NoError(t, err)

	require.NoError(t, c.ToggleStatus(ctx, seed[0]))
	assert.False(t, srv.Products()[0].IsActive)
	assert.False(t, c.Page().Products[0].IsActive)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "Product deactivated", rec.all()[0].Message)
}

func TestBulkAction(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad input without a request", func(t *testing.T) {
		api := new(MockCatalogAPI)
		c, rec := newMockController(t, api, nil)

		err := c.BulkAction(ctx, []uuid.UUID{uuid.New()}, "archive")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		err = c.BulkAction(ctx, nil, catalog.BulkActivate)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Len(t, rec.all(), 2)
		api.AssertNotCalled(t, "Bulk", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete asks first", func(t *testing.T) {
		asked := 0
		confirmer := ConfirmFunc(func(context.Context, Confirmation) (bool, error) {
			asked++
			return true, nil
		})
		seed := products(12)
		c, rec, srv := newServerController(t, confirmer, catalogserver.WithProducts(seed...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		_, err = c.NextPage(ctx)
		require.NoError(t, err)

		require.NoError(t, c.BulkAction(ctx, []uuid.UUID{seed[10].ID, seed[11].ID}, catalog.BulkDelete))
		assert.Equal(t, 1, asked)
		assert.Len(t, srv.Products(), 10)
		assert.Equal(t, 1, c.Page().CurrentPage)
		require.Len(t, rec.all(), 1)
		assert.Equal(t, "2 products updated", rec.all()[0].Message)
	})

	t.Run("deactivate does not ask", func(t *testing.T) {
		seed := products(3)
		c, _, srv := newServerController(t, answer(false), catalogserver.WithProducts(seed...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)

		require.NoError(t, c.BulkAction(ctx, []uuid.UUID{seed[0].ID, seed[2].ID}, catalog.BulkDeactivate))
		assert.False(t, srv.Products()[0].IsActive)
		assert.True(t, srv.Products()[1].IsActive)
		assert.False(t, srv.Products()[2].IsActive)
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newServerController(t, nil, catalogserver.WithProducts(products(2)...))
	_, err := c.LoadProducts(ctx)
	require.NoError(t, err)
	before := c.State()

	var buf bytes.Buffer
	n, err := c.ExportCSV(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Contains(t, buf.String(), "SKU-002")
	assert.Equal(t, before, c.State())

	require.Len(t, rec.all(), 1)
	assert.Equal(t, LevelSuccess, rec.all()[0].Level)
	assert.True(t, strings.HasSuffix(c.ExportURL(catalog.FileExcel), "/export/excel"))
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected file leaves the list alone", func(t *testing.T) {
		c, rec, srv := newServerController(t, nil, catalogserver.WithProducts(products(2)...))
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)
		before := c.State()

		data := "Name,SKU,Price,Stock\nA,A-1,1,1\nB,B-1,1,1\nC,C-1,1,1\nD,D-1,abc,1\n"
		err = c.ImportFile(ctx, catalog.Attachment{Filename: "products.csv", Data: []byte(data)}, catalog.FileCSV)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelError, got[0].Level)
		assert.Equal(t, "Row 4 invalid", got[0].Message)
		assert.Equal(t, before, c.State())
		assert.Len(t, srv.Products(), 2)
		assert.Equal(t, 1, srv.CallCount("GET /list"))
	})

	t.Run("accepted file refreshes", func(t *testing.T) {
		c, rec, _ := newServerController(t, nil)
		_, err := c.LoadProducts(ctx)
		require.NoError(t, err)

		data := "Name,SKU,Price,Stock\nA,A-1,1,1\nB,B-1,2,0\n"
		require.NoError(t, c.ImportFile(ctx, catalog.Attachment{Filename: "products.csv", Data: []byte(data)}, catalog.FileCSV))

		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelSuccess, got[0].Level)
		assert.Equal(t, "Imported 2 products", got[0].Message)
		assert.Equal(t, 2, c.Page().Total)
	})

	t.Run("unsupported kind", func(t *testing.T) {
		api := new(MockCatalogAPI)
		c, rec := newMockController(t, api, nil)
		err := c.ImportFile(ctx, catalog.Attachment{Data: []byte("x")}, "pdf")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Len(t, rec.all(), 1)
		api.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
	})
}
