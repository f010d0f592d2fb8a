package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Compare decimals as floats so numeric tags such as gte=0 apply to them
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

var fieldLabels = map[string]string{
	"Name":              "Name",
	"SKU":               "SKU",
	"EAN13":             "EAN-13",
	"Category":          "Category",
	"ProductType":       "Product type",
	"Price":             "Price",
	"Cost":              "Cost",
	"Stock":             "Stock",
	"LowStockThreshold": "Low stock threshold",
}

// Validate checks the fields before they are sent to the server.
// The returned error is a VALIDATION_ERROR describing every failed field.
func (f ProductFields) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.WrapDomainError(shared.CodeValidation, "Invalid product fields", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return shared.NewDomainError(shared.CodeValidation, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.StructField()]
	if !ok {
		label = fe.StructField()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "gte":
		return label + " cannot be negative"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s characters", label, fe.Param())
	case "numeric":
		return label + " must contain only digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
