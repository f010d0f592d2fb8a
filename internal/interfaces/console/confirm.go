package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	app "github.com/ERPlora/module-inventory/internal/application/catalog"
)

// ErrNoAnswer is returned when the input ends before an answer is given
var ErrNoAnswer = errors.New("no answer on input")

// Prompt asks yes/no questions on a terminal
type Prompt struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewPrompt reads answers from in and writes questions to out.
// With assumeYes every question is accepted without reading.
func NewPrompt(in io.Reader, out io.Writer, assumeYes bool) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm implements catalog.Confirmer. Only "y" and "yes" accept.
func (p *Prompt) Confirm(ctx context.Context, q app.Confirmation) (bool, error) {
	if p.assumeYes {
		return true, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if q.Title != "" {
		fmt.Fprintf(p.out, "%s: ", q.Title)
	}
	fmt.Fprintf(p.out, "%s [y/N] ", q.Message)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return false, ErrNoAnswer
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
