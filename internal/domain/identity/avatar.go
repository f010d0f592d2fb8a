// Package identity derives the avatar shown for catalog entries.
//
// An entry without an image is drawn as a colored circle holding its initial.
// The color comes from a rolling hash of the display name so that the same
// name gets the same color everywhere without storing anything. Hashing runs
// over the literal characters, so "Alpha" and "alpha" may differ.
package identity

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color is a named palette entry
type Color struct {
	Name string
	Hex  string
}

// Palette is the fixed, ordered set of avatar colors.
// Reordering it changes the color of every existing name.
var Palette = [...]Color{
	{Name: "primary", Hex: "#3880ff"},
	{Name: "secondary", Hex: "#3dc2ff"},
	{Name: "tertiary", Hex: "#5260ff"},
	{Name: "success", Hex: "#2dd36f"},
	{Name: "warning", Hex: "#ffc409"},
	{Name: "danger", Hex: "#eb445a"},
	{Name: "medium", Hex: "#92949c"},
	{Name: "dark", Hex: "#222428"},
	{Name: "light", Hex: "#f4f5f8"},
}

// UnknownInitial is shown for blank names and names starting with a
// non-printable character
const UnknownInitial = "?"

var upper = cases.Upper(language.Und)

// Avatar is the rendered identity of an entry
type Avatar struct {
	Initial  string
	Color    string
	ImageURL string
}

// HasImage returns true if the avatar should be drawn from an image
func (a Avatar) HasImage() bool {
	return a.ImageURL != ""
}

// Fallback returns the avatar without its image, used when the image fails to load
func (a Avatar) Fallback() Avatar {
	a.ImageURL = ""
	return a
}

// Option customizes Render
type Option func(*Avatar)

// WithColor overrides the computed color. An empty value is ignored.
func WithColor(hex string) Option {
	return func(a *Avatar) {
		if hex = strings.TrimSpace(hex); hex != "" {
			a.Color = hex
		}
	}
}

// WithImage sets the image to draw instead of the initial
func WithImage(url string) Option {
	return func(a *Avatar) {
		a.ImageURL = strings.TrimSpace(url)
	}
}

// Render derives the avatar for name. It never fails.
func Render(name string, opts ...Option) Avatar {
	a := Avatar{
		Initial: Initial(name),
		Color:   ColorFor(name).Hex,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Initial returns the first character of name upper-cased. Punctuation and
// symbols are kept as they are. Leading whitespace is skipped so a padded
// name does not render a blank circle.
func Initial(name string) string {
	trimmed := strings.TrimLeftFunc(name, unicode.IsSpace)
	if trimmed == "" {
		return UnknownInitial
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if first == utf8.RuneError || !unicode.IsPrint(first) {
		return UnknownInitial
	}
	return upper.String(string(first))
}

// ColorFor picks the palette entry for name
func ColorFor(name string) Color {
	h := Hash(name)
	if h < 0 {
		h = -h
	}
	return Palette[h%int64(len(Palette))]
}

// Hash computes h = c + ((h << 5) - h) over the UTF-16 code units of s.
// The shift truncates h to 32 bits first while the sum is kept exact, which
// reproduces the string hash used by browser clients bit for bit.
func Hash(s string) int64 {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		h = int64(c) + (int64(int32(h)<<5) - h)
	}
	return h
}
