// Package console is the terminal front end of the catalog controller:
// notifications, confirmation prompts and the product table.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	app "github.com/ERPlora/module-inventory/internal/application/catalog"
)

const ansiReset = "\x1b[0m"

var levelStyle = map[app.Level]struct{ mark, color string }{
	app.LevelSuccess: {"✓", "\x1b[32m"},
	app.LevelInfo:    {"i", "\x1b[36m"},
	app.LevelWarning: {"!", "\x1b[33m"},
	app.LevelError:   {"✗", "\x1b[31m"},
}

// Notifier writes one line per notification
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewNotifier writes to w, with colors when w is a terminal
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w, color: isTerminal(w)}
}

// Notify implements catalog.Notifier
func (n *Notifier) Notify(_ context.Context, note app.Notification) {
	style, ok := levelStyle[note.Level]
	if !ok {
		style = levelStyle[app.LevelInfo]
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.color {
		fmt.Fprintf(n.w, "%s%s%s %s\n", style.color, style.mark, ansiReset, note.Message)
		return
	}
	fmt.Fprintf(n.w, "%s %s\n", style.mark, note.Message)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
