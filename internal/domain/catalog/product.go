package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes stocked goods from services
type ProductType string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeService  ProductType = "service"
)

// IsValid checks if the ProductType is a valid value
func (t ProductType) IsValid() bool {
	return t == ProductTypePhysical || t == ProductTypeService
}

const (
	// DefaultCategory is used when a product has no category
	DefaultCategory = "general"
	// DefaultLowStockThreshold is the stock level at or below which a product is low
	DefaultLowStockThreshold = 10
)

// Product is a catalog item as returned by the list endpoint.
// Products are only ever changed through server round-trips.
type Product struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	EAN13             string          `json:"ean13,omitempty"`
	Category          string          `json:"category"`
	ProductType       ProductType     `json:"product_type,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	ImageURL          string          `json:"image,omitempty"`
	IsActive          bool            `json:"is_active"`
}

// UnmarshalJSON applies the catalog defaults for fields the server omits
func (p *Product) UnmarshalJSON(data []byte) error {
	type productAlias Product
	alias := productAlias{
		Category:          DefaultCategory,
		ProductType:       ProductTypePhysical,
		LowStockThreshold: DefaultLowStockThreshold,
		IsActive:          true,
	}
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if strings.TrimSpace(alias.Category) == "" {
		alias.Category = DefaultCategory
	}
	*p = Product(alias)
	return nil
}

// IsLowStock returns true when stock is at or below the threshold
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// InStock returns true when at least one unit is available
func (p Product) InStock() bool {
	return p.Stock > 0
}

// IsService returns true for products that do not carry stock
func (p Product) IsService() bool {
	return p.ProductType == ProductTypeService
}

// ProfitMargin returns the markup over cost as a percentage.
// Zero cost yields zero.
func (p Product) ProfitMargin() decimal.Decimal {
	if !p.Cost.IsPositive() {
		return decimal.Zero
	}
	return p.Price.Sub(p.Cost).Div(p.Cost).Mul(decimal.NewFromInt(100))
}

// StockValue returns stock multiplied by price
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// CostValue returns stock multiplied by cost
func (p Product) CostValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// Fields returns the editable fields of the product, e.g. to prefill an edit form
func (p Product) Fields() ProductFields {
	active := p.IsActive
	return ProductFields{
		Name:              p.Name,
		SKU:               p.SKU,
		EAN13:             p.EAN13,
		Category:          p.Category,
		ProductType:       p.ProductType,
		Price:             p.Price,
		Cost:              p.Cost,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		IsActive:          &active,
	}
}

// Attachment is a file sent along with a product form
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductFields holds the values submitted by the create and edit forms
type ProductFields struct {
	Name              string          `validate:"required,max=255"`
	SKU               string          `validate:"required,max=100"`
	EAN13             string          `validate:"omitempty,len=13,numeric"`
	Category          string          `validate:"max=100"`
	ProductType       ProductType     `validate:"omitempty,oneof=physical service"`
	Price             decimal.Decimal `validate:"gte=0"`
	Cost              decimal.Decimal `validate:"gte=0"`
	Stock             int             `validate:"gte=0"`
	LowStockThreshold int             `validate:"gte=0"`
	IsActive          *bool
	Image             *Attachment
}

// NewProductFields creates form fields with the catalog defaults applied
func NewProductFields(name, sku string, price decimal.Decimal) ProductFields {
	return ProductFields{
		Name:              name,
		SKU:               sku,
		Category:          DefaultCategory,
		ProductType:       ProductTypePhysical,
		Price:             price,
		Cost:              decimal.Zero,
		LowStockThreshold: DefaultLowStockThreshold,
	}
}

// Normalize trims text fields and fills in defaults
func (f ProductFields) Normalize() ProductFields {
	f.Name = strings.TrimSpace(f.Name)
	f.SKU = strings.TrimSpace(f.SKU)
	f.EAN13 = strings.TrimSpace(f.EAN13)
	f.Category = strings.TrimSpace(f.Category)
	if f.Category == "" {
		f.Category = DefaultCategory
	}
	if f.ProductType == "" {
		f.ProductType = ProductTypePhysical
	}
	return f
}

// FormValues returns the multipart text fields in wire format
func (f ProductFields) FormValues() map[string]string {
	values := map[string]string{
		"name":                f.Name,
		"sku":                 f.SKU,
		"ean13":               f.EAN13,
		"category":            f.Category,
		"product_type":        string(f.ProductType),
		"price":               f.Price.StringFixed(2),
		"cost":                f.Cost.StringFixed(2),
		"stock":               strconv.Itoa(f.Stock),
		"low_stock_threshold": strconv.Itoa(f.LowStockThreshold),
	}
	if f.IsActive != nil {
		values["is_active"] = strconv.FormatBool(*f.IsActive)
	}
	return values
}
