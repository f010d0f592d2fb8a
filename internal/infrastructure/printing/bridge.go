package printing

import "context"

// BridgeResult is the answer of a native print bridge
type BridgeResult struct {
	Success bool
	Message string
}

// Bridge is a host capability that prints through the operating system
type Bridge interface {
	Print(ctx context.Context, markup string) (BridgeResult, error)
}

// DocumentPrinter is implemented by bridges that print the sized label page
// instead of the bare symbol markup. The dispatcher prefers it over Print.
type DocumentPrinter interface {
	PrintDocument(ctx context.Context, doc *Document) (BridgeResult, error)
}

// Probe reports the native bridge available right now, or nil.
// It is called once per print attempt.
type Probe func() Bridge

// NoBridge is a probe for hosts without native printing
func NoBridge() Bridge {
	return nil
}

// StaticProbe always reports b
func StaticProbe(b Bridge) Probe {
	return func() Bridge {
		return b
	}
}

// BridgeFunc adapts a function to the Bridge interface
type BridgeFunc func(ctx context.Context, markup string) (BridgeResult, error)

// Print calls f
func (f BridgeFunc) Print(ctx context.Context, markup string) (BridgeResult, error) {
	return f(ctx, markup)
}
