package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// DocumentRenderer converts a label page into a format print queues accept
type DocumentRenderer interface {
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// CommandBridgeConfig describes an OS print command that reads the label on stdin
type CommandBridgeConfig struct {
	// Command is looked up on PATH, e.g. lp
	Command string
	// Args are passed before stdin is read, e.g. ["-d", "labels"]
	Args []string
	// Renderer, when set, turns the label page into e.g. PDF before it is
	// piped. Many CUPS queues have no filter for image/svg+xml, so raw SVG
	// only works on queues that accept it.
	Renderer DocumentRenderer
	// Logger for debug output
	Logger *zap.Logger
}

// CommandBridge prints by piping the label to an OS command
type CommandBridge struct {
	path     string
	args     []string
	renderer DocumentRenderer
	logger   *zap.Logger
}

// lookPath is replaced in tests
var lookPath = exec.LookPath

// CommandProbe returns a probe that reports a CommandBridge while the
// command can be found on PATH
func CommandProbe(cfg CommandBridgeConfig) Probe {
	return func() Bridge {
		b, err := NewCommandBridge(cfg)
		if err != nil {
			return nil
		}
		return b
	}
}

// NewCommandBridge resolves cfg.Command on PATH
func NewCommandBridge(cfg CommandBridgeConfig) (*CommandBridge, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("print command is empty")
	}
	path, err := lookPath(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("print command %s not found: %w", cfg.Command, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandBridge{
		path:     path,
		args:     append([]string(nil), cfg.Args...),
		renderer: cfg.Renderer,
		logger:   logger,
	}, nil
}

// Print runs the command with markup on stdin. A non-zero exit is a failed
// print whose message is the command's error output.
func (b *CommandBridge) Print(ctx context.Context, markup string) (BridgeResult, error) {
	return b.run(ctx, strings.NewReader(markup))
}

// PrintDocument pipes the rendered page when a renderer is configured and
// the bare markup otherwise
func (b *CommandBridge) PrintDocument(ctx context.Context, doc *Document) (BridgeResult, error) {
	if b.renderer == nil {
		return b.Print(ctx, doc.Markup)
	}
	data, err := b.renderer.Render(ctx, doc)
	if err != nil {
		return BridgeResult{}, fmt.Errorf("render label for printing: %w", err)
	}
	return b.run(ctx, bytes.NewReader(data))
}

func (b *CommandBridge) run(ctx context.Context, stdin io.Reader) (BridgeResult, error) {
	cmd := exec.CommandContext(ctx, b.path, b.args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("Running print command",
		zap.String("command", b.path),
		zap.Strings("args", b.args))

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return BridgeResult{}, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = exitErr.Error()
		}
		return BridgeResult{Success: false, Message: msg}, nil
	}
	if err != nil {
		return BridgeResult{}, fmt.Errorf("run print command: %w", err)
	}

	return BridgeResult{Success: true, Message: strings.TrimSpace(stdout.String())}, nil
}
