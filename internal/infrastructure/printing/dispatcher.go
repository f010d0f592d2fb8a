package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/infrastructure/telemetry"
)

// DefaultNativeTimeout bounds a native bridge call when none is configured
const DefaultNativeTimeout = 30 * time.Second

// DispatcherConfig wires the dispatcher to the host
type DispatcherConfig struct {
	// Probe is asked for a native bridge on every dispatch; nil means never
	Probe Probe
	// Surface is used when no native bridge is available
	Surface Surface
	// NativeTimeout bounds the bridge call (default: 30s)
	NativeTimeout time.Duration
	Logger        *zap.Logger
	Metrics       *telemetry.ConsoleMetrics
}

// Dispatcher sends symbols to the native bridge or the fallback surface
type Dispatcher struct {
	probe   Probe
	surface Surface
	timeout time.Duration
	logger  *zap.Logger
	metrics *telemetry.ConsoleMetrics
}

// NewDispatcher creates a dispatcher
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Surface == nil {
		return nil, errors.New("fallback surface is required")
	}
	probe := cfg.Probe
	if probe == nil {
		probe = NoBridge
	}
	timeout := cfg.NativeTimeout
	if timeout <= 0 {
		timeout = DefaultNativeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		probe:   probe,
		surface: cfg.Surface,
		timeout: timeout,
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// Dispatch prints symbol and returns the settled job.
//
// An invalid symbol fails with INVALID_SYMBOL_INPUT before the host is
// touched. A native attempt that errors, refuses or times out fails with
// PRINT_DISPATCH_FAILED and is not retried on the fallback surface. The
// returned job is non-nil whenever the host was involved, even on error.
func (d *Dispatcher) Dispatch(ctx context.Context, symbol printing.Symbol) (*printing.PrintJob, error) {
	if err := symbol.Validate(); err != nil {
		return nil, err
	}

	var (
		job *printing.PrintJob
		err error
	)
	if bridge := d.probe(); bridge != nil {
		job = printing.NewPrintJob(symbol, printing.PathNative)
		err = d.dispatchNative(ctx, bridge, job)
	} else {
		job = printing.NewPrintJob(symbol, printing.PathFallback)
		err = d.dispatchFallback(ctx, job)
	}

	d.metrics.RecordPrint(ctx, symbol.Format.String(), job.Path.String(), job.Status.String(), job.Duration())

	logger := d.logger.With(
		zap.String("job_id", job.ID.String()),
		zap.String("format", symbol.Format.String()),
		zap.String("path", job.Path.String()),
		zap.String("status", job.Status.String()),
		zap.Duration("duration", job.Duration()),
	)
	if err != nil {
		logger.Warn("Print dispatch failed", zap.Error(err))
		return job, err
	}
	logger.Info("Print dispatched")
	return job, nil
}

type bridgeOutcome struct {
	result BridgeResult
	err    error
}

func (d *Dispatcher) dispatchNative(ctx context.Context, bridge Bridge, job *printing.PrintJob) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	send := func() (BridgeResult, error) {
		return bridge.Print(ctx, job.Symbol.Markup)
	}
	if dp, ok := bridge.(DocumentPrinter); ok {
		doc, err := BuildDocument(job.ID, job.Symbol)
		if err != nil {
			job.Fail(err.Error())
			return shared.WrapDomainError(shared.CodePrintDispatchFailed, "Could not build label page", err)
		}
		send = func() (BridgeResult, error) {
			return dp.PrintDocument(ctx, doc)
		}
	}

	done := make(chan bridgeOutcome, 1)
	go func() {
		result, err := send()
		done <- bridgeOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			job.Fail(out.err.Error())
			return shared.WrapDomainError(shared.CodePrintDispatchFailed, "Native print failed", out.err)
		}
		if !out.result.Success {
			reason := out.result.Message
			if reason == "" {
				reason = "Printer reported failure"
			}
			job.Fail(reason)
			return shared.NewDomainError(shared.CodePrintDispatchFailed, reason)
		}
		job.Succeed(out.result.Message)
		return nil
	case <-ctx.Done():
		reason := fmt.Sprintf("Native print timed out after %v", d.timeout)
		if errors.Is(ctx.Err(), context.Canceled) {
			reason = "Native print was cancelled"
		}
		job.Fail(reason)
		return shared.WrapDomainError(shared.CodePrintDispatchFailed, reason, ctx.Err())
	}
}

func (d *Dispatcher) dispatchFallback(ctx context.Context, job *printing.PrintJob) error {
	doc, err := BuildDocument(job.ID, job.Symbol)
	if err != nil {
		job.Fail(err.Error())
		return shared.WrapDomainError(shared.CodePrintDispatchFailed, "Could not build label page", err)
	}
	result, err := d.surface.Open(ctx, doc)
	if err != nil {
		job.Fail(err.Error())
		return shared.WrapDomainError(shared.CodePrintDispatchFailed, "Could not open print surface", err)
	}
	archiveURL := ""
	if result != nil {
		archiveURL = result.ArchiveURL
	}
	job.Opened(archiveURL)
	return nil
}
