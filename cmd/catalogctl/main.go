// Command catalogctl drives the inventory catalog from a terminal: listing,
// editing, import/export and barcode label printing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/infrastructure/config"
	"github.com/ERPlora/module-inventory/internal/infrastructure/logger"
	"github.com/ERPlora/module-inventory/internal/interfaces/console"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		logLevel   string
		assumeYes  bool
	)
	flag.StringVar(&configPath, "config", "", "Path to catalogctl.toml (default: ./catalogctl.toml)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&assumeYes, "yes", false, "Answer yes to every confirmation")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return console.ExitUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
		printUsage()
		return console.ExitUsage
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		return console.ExitFailure
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return console.ExitFailure
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return console.ExitFailure
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log, assumeYes)
	if err != nil {
		log.Error("Failed to start", zap.Error(err))
		return console.ExitFailure
	}
	defer app.close()

	log.Debug("catalogctl started", zap.String("command", args[0]), zap.String("api", cfg.API.BaseURL))

	if err := cmd.run(ctx, app, args[1:]); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "%v\nUsage: catalogctl %s\n", err, cmd.usage)
			return console.ExitUsage
		}
		// notifications already told the operator what went wrong
		log.Debug("Command failed", zap.String("command", args[0]), zap.Error(err))
		return console.ExitCode(err)
	}
	return console.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: catalogctl [flags] <command> [args]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, name := range commandOrder {
		c := commands[name]
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, c.summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
