package store

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"order_system/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names, the names callers actually send
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the struct tags on in and converts failures into a validation error
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.Validation("invalid input", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "username":
		return "may contain only letters, digits and @/./+/-/_ characters"
	default:
		return "invalid value"
	}
}

const (
	amountMaxDigits   = 10
	amountMaxDecimals = 2
)

// checkAmount enforces the decimal(10,2) column shape without rounding
func checkAmount(d decimal.Decimal) error {
	if -d.Exponent() > amountMaxDecimals && !d.Equal(d.Round(amountMaxDecimals)) {
		return apperr.Field("total_amount", "ensure that there are no more than %d decimal places", amountMaxDecimals)
	}
	whole := d.Abs().Truncate(0).String()
	if whole != "0" && len(whole) > amountMaxDigits-amountMaxDecimals {
		return apperr.Field("total_amount", "ensure that there are no more than %d digits before the decimal point", amountMaxDigits-amountMaxDecimals)
	}
	return nil
}

// isDuplicateKey recognises unique violations whether or not the driver translated them
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
