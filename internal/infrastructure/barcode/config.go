package barcode

import (
	"fmt"
	"regexp"
)

// Layout defaults, in millimeters unless noted
const (
	DefaultModuleWidth  = 0.3
	DefaultModuleHeight = 10.0
	DefaultFontSize     = 10.0 // points
	DefaultTextDistance = 5.0
	DefaultQuietZone    = 6.5
	DefaultForeground   = "#000000"
	DefaultBackground   = "#ffffff"
)

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]+)$`)

// Config holds the label layout knobs
type Config struct {
	// ModuleWidth is the width of the narrowest bar
	ModuleWidth float64
	// ModuleHeight is the height of the bars
	ModuleHeight float64
	// FontSize of the human readable line in points; 0 hides the text
	FontSize float64
	// TextDistance from the bottom of the bars to the text baseline
	TextDistance float64
	// QuietZone is the blank margin on each side of the bars
	QuietZone float64
	// Foreground and Background are SVG colors
	Foreground string
	Background string
	// VerifyChecksum rejects 13-digit EAN input whose check digit is wrong.
	// When false the check digit is recomputed from the first 12 digits.
	VerifyChecksum bool
}

// DefaultConfig returns the layout used for shelf labels
func DefaultConfig() Config {
	return Config{
		ModuleWidth:  DefaultModuleWidth,
		ModuleHeight: DefaultModuleHeight,
		FontSize:     DefaultFontSize,
		TextDistance: DefaultTextDistance,
		QuietZone:    DefaultQuietZone,
		Foreground:   DefaultForeground,
		Background:   DefaultBackground,
	}
}

// Validate checks that the knobs describe a drawable label
func (c Config) Validate() error {
	if c.ModuleWidth <= 0 {
		return fmt.Errorf("barcode module width must be positive, got %v", c.ModuleWidth)
	}
	if c.ModuleHeight <= 0 {
		return fmt.Errorf("barcode module height must be positive, got %v", c.ModuleHeight)
	}
	if c.FontSize < 0 || c.TextDistance < 0 || c.QuietZone < 0 {
		return fmt.Errorf("barcode font size, text distance and quiet zone cannot be negative")
	}
	if !colorPattern.MatchString(c.Foreground) {
		return fmt.Errorf("invalid barcode foreground color %q", c.Foreground)
	}
	if !colorPattern.MatchString(c.Background) {
		return fmt.Errorf("invalid barcode background color %q", c.Background)
	}
	return nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ModuleWidth == 0 {
		c.ModuleWidth = d.ModuleWidth
	}
	if c.ModuleHeight == 0 {
		c.ModuleHeight = d.ModuleHeight
	}
	if c.Foreground == "" {
		c.Foreground = d.Foreground
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	return c
}
