// Package catalog orchestrates the product catalog screen: list state,
// pagination, searches, mutations, import/export and barcode printing.
//
// A Controller owns all list state. Requests run without the state lock held
// and their results are applied only once they settle. Loads are numbered; a
// load that finishes after a newer one was issued is discarded, so the visible
// page always reflects the most recent request.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
	"github.com/ERPlora/module-inventory/internal/infrastructure/telemetry"
)

// Config wires a Controller to its collaborators
type Config struct {
	API       CatalogAPI
	Encoder   SymbolEncoder
	Printer   LabelPrinter
	Images    AttachmentOptimizer // optional
	Notifier  Notifier
	Confirmer Confirmer
	// PerPage is the initial page size (default: 10)
	PerPage int
	Logger  *zap.Logger
	Metrics *telemetry.ConsoleMetrics
}

// State is a consistent copy of the controller state
type State struct {
	Query  catalog.ListQuery
	Page   catalog.Page
	Stats  catalog.Stats
	Loaded bool
	// Categories is the list from the last LoadCategories
	Categories []catalog.Category
}

// Controller is the catalog screen's state machine
type Controller struct {
	api       CatalogAPI
	encoder   SymbolEncoder
	printer   LabelPrinter
	images    AttachmentOptimizer
	notifier  Notifier
	confirmer Confirmer
	logger    *zap.Logger
	metrics   *telemetry.ConsoleMetrics

	mu         sync.Mutex
	query      catalog.ListQuery
	page       catalog.Page
	stats      catalog.Stats
	categories []catalog.Category
	loaded     bool
	generation uint64
	cancelLoad context.CancelFunc
}

// NewController creates a controller with an empty page
func NewController(cfg Config) (*Controller, error) {
	if cfg.API == nil {
		return nil, errors.New("catalog API is required")
	}
	if cfg.Confirmer == nil {
		return nil, errors.New("confirmer is required")
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	query := catalog.DefaultListQuery()
	if cfg.PerPage != 0 {
		if !catalog.IsValidPerPage(cfg.PerPage) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unsupported page size")
		}
		query.PerPage = cfg.PerPage
	}

	return &Controller{
		api:       cfg.API,
		encoder:   cfg.Encoder,
		printer:   cfg.Printer,
		images:    cfg.Images,
		notifier:  notifier,
		confirmer: cfg.Confirmer,
		logger:    log,
		metrics:   cfg.Metrics,
		query:     query,
		page:      catalog.EmptyPage(query.PerPage),
	}, nil
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Query:      c.query,
		Page:       c.page,
		Stats:      c.stats,
		Loaded:     c.loaded,
		Categories: c.categories,
	}
}

// Query returns the current list query
func (c *Controller) Query() catalog.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Page returns the page on screen
func (c *Controller) Page() catalog.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Stats returns the summary on screen
func (c *Controller) Stats() catalog.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// LoadProducts reloads the current page and the stats summary.
//
// On failure the state is left as it was, one error notification is shown and
// the error is returned; a load the caller cancelled is shown as a warning.
// A load overtaken by a newer one returns ErrSuperseded and shows nothing.
func (c *Controller) LoadProducts(ctx context.Context) (catalog.Page, error) {
	return c.load(ctx, c.Query(), loadOptions{notify: true})
}

// begin starts a new load generation and cancels the previous load
func (c *Controller) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	loadCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.generation++
	c.cancelLoad = cancel
	return loadCtx, cancel, c.generation
}

// loadOptions controls how a load reports and settles
type loadOptions struct {
	// notify reports failures; off when the caller reports the outcome itself
	notify bool
	// stepBack retreats from pages left empty by a removal before anything
	// is applied. Pages past the end are always retreated from.
	stepBack bool
}

// load fetches q and applies it if no newer load was issued meanwhile
func (c *Controller) load(ctx context.Context, q catalog.ListQuery, opts loadOptions) (catalog.Page, error) {
	loadCtx, cancel, gen := c.begin(ctx)
	defer cancel()

	log := logger.For(ctx, c.logger).With(
		zap.Uint64("generation", gen),
		zap.Int("page", q.Page),
		zap.String("search", q.Search))

	page, stats, err := c.fetch(loadCtx, q)
	// A server that does not clamp answers past the last page with no rows
	for err == nil && page.IsEmpty() && q.Page > 1 && (opts.stepBack || page.CurrentPage < q.Page) {
		q.Page = min(q.Page-1, max(page.Pages, 1))
		log.Debug("Stepping back from an emptied page", zap.Int("to", q.Page))
		page, stats, err = c.fetch(loadCtx, q)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.metrics.RecordStaleLoad(ctx)
		log.Debug("Discarded superseded load")
		return catalog.Page{}, shared.ErrSuperseded
	}
	c.cancelLoad = nil
	if err != nil {
		c.mu.Unlock()
		log.Warn("Load failed", zap.Error(err))
		switch {
		case !opts.notify:
		case ctx.Err() != nil:
			c.notify(ctx, LevelWarning, OpLoad, "Loading cancelled", err)
		default:
			c.notify(ctx, LevelError, OpLoad, err.Error(), err)
		}
		return catalog.Page{}, err
	}
	q.Page = page.CurrentPage
	q.PerPage = page.PerPage
	c.query = q
	c.page = page
	c.stats = stats
	c.loaded = true
	c.mu.Unlock()

	log.Debug("Load applied", zap.Int("total", page.Total), zap.Int("pages", page.Pages))
	return page, nil
}

// fetch requests a page and the summary concurrently; both must succeed
func (c *Controller) fetch(ctx context.Context, q catalog.ListQuery) (catalog.Page, catalog.Stats, error) {
	var (
		page  catalog.Page
		stats catalog.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = c.api.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.api.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog.Page{}, catalog.Stats{}, err
	}
	return page, stats, nil
}

// update applies fn to the query and loads the result.
// fn returns false to leave the query alone, in which case nothing is sent.
func (c *Controller) update(ctx context.Context, fn func(q *catalog.ListQuery, page catalog.Page) bool) (catalog.Page, error) {
	c.mu.Lock()
	q := c.query
	if !fn(&q, c.page) {
		page := c.page
		c.mu.Unlock()
		return page, nil
	}
	c.query = q
	c.mu.Unlock()
	return c.load(ctx, q, loadOptions{notify: true})
}

// Search sets the search text, returns to the first page and loads
func (c *Controller) Search(ctx context.Context, text string) (catalog.Page, error) {
	return c.update(ctx, func(q *catalog.ListQuery, _ catalog.Page) bool {
		*q = q.WithSearch(text)
		return true
	})
}

// PrevPage loads the previous page; on the first page it does nothing
func (c *Controller) PrevPage(ctx context.Context) (catalog.Page, error) {
	return c.update(ctx, func(q *catalog.ListQuery, page catalog.Page) bool {
		if !page.HasPrev() {
			return false
		}
		q.Page = page.CurrentPage - 1
		return true
	})
}

// NextPage loads the next page; on the last page it does nothing
func (c *Controller) NextPage(ctx context.Context) (catalog.Page, error) {
	return c.update(ctx, func(q *catalog.ListQuery, page catalog.Page) bool {
		if !page.HasNext() {
			return false
		}
		q.Page = page.CurrentPage + 1
		return true
	})
}

// GoToPage loads page n; pages outside [1, Pages] are ignored
func (c *Controller) GoToPage(ctx context.Context, n int) (catalog.Page, error) {
	return c.update(ctx, func(q *catalog.ListQuery, page catalog.Page) bool {
		if n < 1 || n > max(page.Pages, 1) {
			return false
		}
		q.Page = n
		return true
	})
}

// SetPerPage changes the page size and returns to the first page
func (c *Controller) SetPerPage(ctx context.Context, n int) (catalog.Page, error) {
	if !catalog.IsValidPerPage(n) {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Unsupported page size")
		c.notify(ctx, LevelError, OpLoad, err.Error(), err)
		return c.Page(), err
	}
	return c.update(ctx, func(q *catalog.ListQuery, _ catalog.Page) bool {
		q.PerPage = n
		q.Page = 1
		return true
	})
}

// SetSort orders the list and returns to the first page
func (c *Controller) SetSort(ctx context.Context, field catalog.SortField, dir catalog.SortDir) (catalog.Page, error) {
	if !field.IsValid() || !dir.IsValid() {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Unsupported sort order")
		c.notify(ctx, LevelError, OpLoad, err.Error(), err)
		return c.Page(), err
	}
	return c.update(ctx, func(q *catalog.ListQuery, _ catalog.Page) bool {
		q.Sort = field
		q.Dir = dir
		q.Page = 1
		return true
	})
}

// SetStatusFilter narrows the list by availability and returns to the first page
func (c *Controller) SetStatusFilter(ctx context.Context, status catalog.StatusFilter) (catalog.Page, error) {
	if !status.IsValid() {
		err := shared.NewDomainError(shared.CodeInvalidInput, "Unsupported status filter")
		c.notify(ctx, LevelError, OpLoad, err.Error(), err)
		return c.Page(), err
	}
	return c.update(ctx, func(q *catalog.ListQuery, _ catalog.Page) bool {
		q.Status = status
		q.Page = 1
		return true
	})
}

// SetCategoryFilter narrows the list to one category ("" for all) and
// returns to the first page
func (c *Controller) SetCategoryFilter(ctx context.Context, category string) (catalog.Page, error) {
	return c.update(ctx, func(q *catalog.ListQuery, _ catalog.Page) bool {
		q.Category = strings.TrimSpace(category)
		q.Page = 1
		return true
	})
}

func (c *Controller) notify(ctx context.Context, level Level, op, message string, err error) {
	c.metrics.RecordNotification(ctx, op, level.String())
	c.notifier.Notify(ctx, Notification{
		Level:     level,
		Operation: op,
		Message:   message,
		Err:       err,
	})
}
