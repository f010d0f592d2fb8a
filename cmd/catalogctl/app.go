package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/cookiejar"
	"net/url"
	"os"

	"go.uber.org/zap"

	appcatalog "github.com/ERPlora/module-inventory/internal/application/catalog"
	"github.com/ERPlora/module-inventory/internal/infrastructure/barcode"
	"github.com/ERPlora/module-inventory/internal/infrastructure/catalogapi"
	"github.com/ERPlora/module-inventory/internal/infrastructure/config"
	"github.com/ERPlora/module-inventory/internal/infrastructure/imageopt"
	"github.com/ERPlora/module-inventory/internal/infrastructure/printing"
	"github.com/ERPlora/module-inventory/internal/infrastructure/storage"
	"github.com/ERPlora/module-inventory/internal/infrastructure/telemetry"
	"github.com/ERPlora/module-inventory/internal/interfaces/console"
)

const serviceVersion = "1.0.0"

// app holds everything a command needs
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	controller *appcatalog.Controller
	prompt     *console.Prompt
	closers    []io.Closer

	shutdown []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, assumeYes bool) (*app, error) {
	a := &app{cfg: cfg, log: log}

	metrics, err := a.setupTelemetry(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	log = a.log

	jar, err := cookiejar.New(nil)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("parsing api.base_url: %w", err)
	}

	client, err := catalogapi.NewClient(catalogapi.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		Retries:   cfg.API.Retries,
		RetryWait: cfg.API.RetryWait,
		UserAgent: cfg.API.UserAgent,
		Tokens:    tokenSource(&cfg.API, jar, base),
		Jar:       jar,
		Logger:    log,
		Metrics:   metrics,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	encoder, err := barcode.NewEncoder(barcode.Config{
		ModuleWidth:    cfg.Barcode.ModuleWidth,
		ModuleHeight:   cfg.Barcode.ModuleHeight,
		FontSize:       cfg.Barcode.FontSize,
		TextDistance:   cfg.Barcode.TextDistance,
		QuietZone:      cfg.Barcode.QuietZone,
		Foreground:     cfg.Barcode.Foreground,
		Background:     cfg.Barcode.Background,
		VerifyChecksum: cfg.Barcode.VerifyChecksum,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	dispatcher, err := a.setupPrinting(ctx, metrics)
	if err != nil {
		a.close()
		return nil, err
	}

	var images appcatalog.AttachmentOptimizer
	if cfg.Image.Enabled {
		images = imageopt.New(imageopt.Config{
			MaxDimension: cfg.Image.MaxDimension,
			Quality:      cfg.Image.Quality,
			Logger:       log,
		})
	}

	a.prompt = console.NewPrompt(os.Stdin, os.Stderr, assumeYes)
	a.controller, err = appcatalog.NewController(appcatalog.Config{
		API:       client,
		Encoder:   encoder,
		Printer:   dispatcher,
		Images:    images,
		Notifier:  console.NewNotifier(os.Stderr),
		Confirmer: a.prompt,
		PerPage:   cfg.Catalog.PerPage,
		Logger:    log,
		Metrics:   metrics,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupTelemetry(ctx context.Context) (*telemetry.ConsoleMetrics, error) {
	tc := a.cfg.Telemetry

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tc.Insecure,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.shutdown = append(a.shutdown, tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.ExportInterval,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tc.Insecure,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.shutdown = append(a.shutdown, mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          tc.Insecure,
	}, a.log)
	if err != nil {
		return nil, err
	}
	a.shutdown = append(a.shutdown, lp.Shutdown)
	a.log = lp.Bridge(a.log)

	if !mp.IsEnabled() {
		return nil, nil
	}
	return telemetry.NewConsoleMetrics(mp.Meter("catalogctl"))
}

func (a *app) setupPrinting(ctx context.Context, metrics *telemetry.ConsoleMetrics) (*printing.Dispatcher, error) {
	pc := a.cfg.Print

	chrome := &printing.ChromeConfig{
		RemoteURL: pc.ChromeRemoteURL,
		Headless:  pc.Headless,
		NoSandbox: pc.NoSandbox,
		Logger:    a.log,
	}

	var probe printing.Probe
	if pc.NativeEnabled {
		bc := printing.CommandBridgeConfig{
			Command: pc.NativeCommand,
			Args:    pc.NativeArgs,
			Logger:  a.log,
		}
		// lp queues without an svg filter get a rendered PDF instead
		if pc.NativeFormat == "pdf" {
			renderer := printing.NewPDFRenderer(chrome)
			a.closers = append(a.closers, renderer)
			bc.Renderer = renderer
		}
		probe = printing.CommandProbe(bc)
	}

	var surface printing.Surface
	switch pc.Fallback {
	case "pdf":
		archive, err := storage.New(ctx, &a.cfg.Storage, a.log)
		if err != nil {
			return nil, err
		}
		pdf, err := printing.NewPDFSurface(chrome, archive)
		if err != nil {
			return nil, err
		}
		surface = pdf
		a.closers = append(a.closers, pdf)
	default:
		browser := printing.NewChromedpSurface(chrome)
		surface = browser
		a.closers = append(a.closers, browser)
	}

	return printing.NewDispatcher(printing.DispatcherConfig{
		Probe:         probe,
		Surface:       surface,
		NativeTimeout: pc.NativeTimeout,
		Logger:        a.log,
		Metrics:       metrics,
	})
}

func tokenSource(cfg *config.APIConfig, jar *cookiejar.Jar, base *url.URL) catalogapi.TokenSource {
	switch cfg.CSRFSource {
	case "static":
		return catalogapi.StaticToken(cfg.CSRFToken)
	case "env":
		return catalogapi.EnvToken(cfg.CSRFEnv)
	default:
		return catalogapi.CookieToken{Jar: jar, URL: base, Name: cfg.CSRFCookie}
	}
}

// close releases the print surface and flushes telemetry
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Debug("Closing print resources", zap.Error(err))
		}
	}
	ctx := context.Background()
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, a.shutdown[i](ctx))
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("Telemetry shutdown failed", zap.Error(err))
	}
}
