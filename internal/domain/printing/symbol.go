package printing

import (
	"strings"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

// Symbol is an encoded barcode ready to be printed
type Symbol struct {
	Format   BarcodeFormat
	Data     string  // Encoded payload; for EAN-13 this includes the check digit
	Text     string  // Human readable line printed under the bars
	Markup   string  // SVG document
	WidthMM  float64 // Overall width including quiet zones
	HeightMM float64 // Overall height including the text line
}

// Validate checks that the symbol can be dispatched
func (s Symbol) Validate() error {
	if !s.Format.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidSymbolInput, "Unsupported barcode format: "+s.Format.String())
	}
	if strings.TrimSpace(s.Markup) == "" {
		return shared.NewDomainError(shared.CodeInvalidSymbolInput, "Symbol markup cannot be empty")
	}
	return nil
}
