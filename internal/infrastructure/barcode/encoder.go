package barcode

import (
	"bytes"
	"image/color"
	"strconv"
	"strings"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"

	"github.com/ERPlora/module-inventory/internal/domain/printing"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

// Encoder renders product codes as SVG barcodes. It performs no I/O.
type Encoder struct {
	config Config
}

// NewEncoder creates an encoder. Zero module sizes and empty colors take the defaults.
func NewEncoder(config Config) (*Encoder, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{config: config}, nil
}

// Config returns the layout in use
func (e *Encoder) Config() Config {
	return e.config
}

// Encode validates value for format and renders it.
// Invalid input yields an INVALID_SYMBOL_INPUT error.
func (e *Encoder) Encode(value string, format printing.BarcodeFormat) (printing.Symbol, error) {
	if format == "" {
		format = printing.DefaultFormat
	}
	value = strings.TrimSpace(value)

	var (
		code bc.BarcodeIntCS
		data string
		err  error
	)
	switch format {
	case printing.FormatCode128:
		if err := validateCode128(value); err != nil {
			return printing.Symbol{}, err
		}
		data = value
		code, err = code128.Encode(data)
	case printing.FormatEAN13:
		data, err = e.normalizeEAN13(value)
		if err != nil {
			return printing.Symbol{}, err
		}
		code, err = ean.Encode(data)
	default:
		return printing.Symbol{}, shared.NewDomainError(shared.CodeInvalidSymbolInput,
			"Unsupported barcode format: "+format.String())
	}
	if err != nil {
		return printing.Symbol{}, shared.WrapDomainError(shared.CodeInvalidSymbolInput,
			"Error generating barcode: "+err.Error(), err)
	}

	layout := e.layout(modules(code), data)
	var buf bytes.Buffer
	if err := svgTemplate.Execute(&buf, layout); err != nil {
		return printing.Symbol{}, shared.WrapDomainError(shared.CodeInvalidSymbolInput,
			"Error rendering barcode", err)
	}

	return printing.Symbol{
		Format:   format,
		Data:     data,
		Text:     layout.Text,
		Markup:   buf.String(),
		WidthMM:  layout.Width,
		HeightMM: layout.Height,
	}, nil
}

// CanEncode reports whether value is acceptable for format, with the reason if not
func (e *Encoder) CanEncode(value string, format printing.BarcodeFormat) (bool, string) {
	value = strings.TrimSpace(value)
	var err error
	switch format {
	case printing.FormatCode128, "":
		err = validateCode128(value)
	case printing.FormatEAN13:
		_, err = e.normalizeEAN13(value)
	default:
		return false, "Unsupported format: " + format.String()
	}
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}

func validateCode128(value string) error {
	if value == "" {
		return shared.NewDomainError(shared.CodeInvalidSymbolInput, "SKU cannot be empty")
	}
	if len(value) > MaxCode128Length {
		return shared.NewDomainError(shared.CodeInvalidSymbolInput, "SKU too long for Code128 (max 80 characters)")
	}
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] > 0x7e {
			return shared.NewDomainError(shared.CodeInvalidSymbolInput, "Code128 accepts printable ASCII characters only")
		}
	}
	return nil
}

// normalizeEAN13 returns the 13-digit code to encode
func (e *Encoder) normalizeEAN13(value string) (string, error) {
	if !isDigits(value) {
		return "", shared.NewDomainError(shared.CodeInvalidSymbolInput, "EAN13 requires only digits")
	}
	if len(value) != ean13Payload && len(value) != ean13Length {
		return "", shared.NewDomainError(shared.CodeInvalidSymbolInput, "EAN13 requires 12 or 13 digits")
	}
	if len(value) == ean13Length && e.config.VerifyChecksum && !ValidEAN13(value) {
		return "", shared.NewDomainError(shared.CodeInvalidSymbolInput, "EAN13 check digit does not match")
	}
	payload := value[:ean13Payload]
	check, err := CheckDigit(payload)
	if err != nil {
		return "", err
	}
	return payload + strconv.Itoa(check), nil
}

// modules reads the bar pattern, true for dark modules
func modules(code bc.Barcode) []bool {
	width := code.Bounds().Dx()
	out := make([]bool, width)
	for x := 0; x < width; x++ {
		out[x] = isDark(code.At(x, 0))
	}
	return out
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r+g+b < 3*0x8000
}

// layout places the bars on the millimeter grid
func (e *Encoder) layout(mods []bool, text string) svgData {
	cfg := e.config
	d := svgData{
		Width:      2*cfg.QuietZone + float64(len(mods))*cfg.ModuleWidth,
		Height:     cfg.ModuleHeight,
		BarHeight:  cfg.ModuleHeight,
		Foreground: cfg.Foreground,
		Background: cfg.Background,
	}

	for i := 0; i < len(mods); {
		if !mods[i] {
			i++
			continue
		}
		start := i
		for i < len(mods) && mods[i] {
			i++
		}
		d.Bars = append(d.Bars, bar{
			X:     cfg.QuietZone + float64(start)*cfg.ModuleWidth,
			Width: float64(i-start) * cfg.ModuleWidth,
		})
	}

	if cfg.FontSize > 0 {
		d.Text = text
		d.FontSize = cfg.FontSize * pointToMM
		d.TextX = d.Width / 2
		d.TextY = cfg.ModuleHeight + max(cfg.TextDistance, d.FontSize)
		d.Height = d.TextY + d.FontSize/3
	}
	return d
}
