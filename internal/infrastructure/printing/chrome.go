package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
)

const defaultRenderTimeout = 30 * time.Second

// ChromeConfig contains configuration for the Chrome backed surfaces
type ChromeConfig struct {
	// RemoteURL is the DevTools URL of a running Chrome instance (optional).
	// If empty, a new browser is launched.
	RemoteURL string
	// ExecPath overrides the browser binary
	ExecPath string
	// Headless mode
	Headless bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// RenderTimeout bounds headless PDF rendering (default: 30s)
	RenderTimeout time.Duration
	// Logger for debug output
	Logger *zap.Logger
}

type chromeRuntime struct {
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func newChromeRuntime(cfg *ChromeConfig) *chromeRuntime {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := &chromeRuntime{logger: logger}
	if cfg.RemoteURL != "" {
		rt.allocCtx, rt.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return rt
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	rt.allocCtx, rt.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return rt
}

func (rt *chromeRuntime) newTab() (context.Context, context.CancelFunc) {
	return chromedp.NewContext(rt.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			rt.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
}

func (rt *chromeRuntime) close() {
	if rt.allocCancel != nil {
		rt.allocCancel()
	}
}

// loadDocument replaces the blank page content with html
func loadDocument(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		frameTree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
	})
}

// printDialogScript raises the print dialog after the current task so the
// evaluation returns before the dialog blocks the page
const printDialogScript = `setTimeout(() => window.print(), 0)`

// ChromedpSurface opens each label in a visible Chrome tab and raises the
// print dialog. Tabs stay open until Close so the operator can finish printing.
type ChromedpSurface struct {
	rt *chromeRuntime

	mu   sync.Mutex
	tabs []context.CancelFunc
}

// NewChromedpSurface creates a surface that prints through the browser dialog
func NewChromedpSurface(cfg *ChromeConfig) *ChromedpSurface {
	if cfg == nil {
		cfg = &ChromeConfig{}
	}
	return &ChromedpSurface{rt: newChromeRuntime(cfg)}
}

// Open shows doc and requests the print dialog. It returns once the dialog has
// been requested; the outcome of the dialog is not observable.
func (s *ChromedpSurface) Open(ctx context.Context, doc *Document) (*SurfaceResult, error) {
	if doc == nil || doc.HTML == "" {
		return nil, errors.New("document is empty")
	}

	tabCtx, cancel := s.rt.newTab()
	stop := context.AfterFunc(ctx, cancel)

	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		loadDocument(doc.HTML),
		chromedp.Evaluate(printDialogScript, nil),
	)
	if !stop() || err != nil {
		cancel()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("open print dialog: %w", err)
	}

	s.mu.Lock()
	s.tabs = append(s.tabs, cancel)
	s.mu.Unlock()

	s.rt.logger.Debug("Print dialog opened", zap.String("job_id", doc.JobID.String()))
	return &SurfaceResult{}, nil
}

// Close closes every open tab and the browser
func (s *ChromedpSurface) Close() error {
	s.mu.Lock()
	tabs := s.tabs
	s.tabs = nil
	s.mu.Unlock()

	for _, cancel := range tabs {
		cancel()
	}
	s.rt.close()
	return nil
}

// PDFRenderer renders label pages to PDF with headless Chrome
type PDFRenderer struct {
	rt      *chromeRuntime
	timeout time.Duration
}

// NewPDFRenderer creates a renderer; the browser starts on first use
func NewPDFRenderer(cfg *ChromeConfig) *PDFRenderer {
	if cfg == nil {
		cfg = &ChromeConfig{}
	}
	headless := *cfg
	headless.Headless = true
	timeout := cfg.RenderTimeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &PDFRenderer{
		rt:      newChromeRuntime(&headless),
		timeout: timeout,
	}
}

// Render prints doc to a PDF sized to the label
func (r *PDFRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	if doc == nil || doc.HTML == "" {
		return nil, errors.New("document is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tabCtx, tabCancel := r.rt.newTab()
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		loadDocument(doc.HTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPrintBackground(true).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPreferCSSPageSize(true)
			if doc.WidthMM > 0 && doc.HeightMM > 0 {
				params = params.
					WithPaperWidth(mmToInches(doc.WidthMM)).
					WithPaperHeight(mmToInches(doc.HeightMM))
			}
			data, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("label rendering timed out after %v: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("render label: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("rendered label is empty")
	}
	return pdf, nil
}

// Close shuts the browser down
func (r *PDFRenderer) Close() error {
	r.rt.close()
	return nil
}

// PDFSurface renders each label to a PDF and stores it in an archive, so it
// can be printed later from any viewer
type PDFSurface struct {
	renderer DocumentRenderer
	archive  printing.LabelArchive
	logger   *zap.Logger
}

// NewPDFSurface creates a surface that archives PDFs rendered by headless Chrome
func NewPDFSurface(cfg *ChromeConfig, archive printing.LabelArchive) (*PDFSurface, error) {
	if cfg == nil {
		cfg = &ChromeConfig{}
	}
	return NewArchivingSurface(NewPDFRenderer(cfg), archive, cfg.Logger)
}

// NewArchivingSurface creates a surface that stores whatever renderer produces
func NewArchivingSurface(renderer DocumentRenderer, archive printing.LabelArchive, logger *zap.Logger) (*PDFSurface, error) {
	if renderer == nil {
		return nil, errors.New("label renderer is required")
	}
	if archive == nil {
		return nil, errors.New("label archive is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFSurface{renderer: renderer, archive: archive, logger: logger}, nil
}

// Open renders doc and archives the PDF
func (s *PDFSurface) Open(ctx context.Context, doc *Document) (*SurfaceResult, error) {
	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	stored, err := s.archive.Store(ctx, &printing.RenderedLabel{
		JobID:       doc.JobID,
		ContentType: "application/pdf",
		Extension:   "pdf",
		Data:        pdf,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("archive label: %w", err)
	}

	s.logger.Info("Label rendered",
		zap.String("job_id", doc.JobID.String()),
		zap.Int("bytes", len(pdf)),
		zap.String("url", stored.URL))

	return &SurfaceResult{ArchiveURL: stored.URL}, nil
}

// Close shuts the renderer down when it owns a browser
func (s *PDFSurface) Close() error {
	if c, ok := s.renderer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}
