package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/format"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = NewValidator()

// NewValidator returns a validator that reports JSON field names and knows
// the imei_serial, warranty_plan and contact tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("imei_serial", func(fl validator.FieldLevel) bool {
		return format.ValidateDeviceIdentifier(fl.Field().String())
	})
	_ = v.RegisterValidation("warranty_plan", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseWarrantyPlan(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return format.ValidateContact(fl.Field().String())
	})

	return v
}

// validateForm runs struct tags and maps failures onto a domain.ValidationError.
func validateForm(form any) *domain.ValidationError {
	verr := domain.NewValidationError()

	err := validate.Struct(form)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("form", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), validationMessage(fe))
	}
	return verr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", humanize(fe.Field()))
	case "imei_serial":
		return "Invalid serial number format (minimum 6 characters)"
	case "warranty_plan":
		return "Unknown warranty plan"
	case "contact":
		return "Must be a phone number (+255/0 followed by 9 digits) or an email address"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "min":
		return fmt.Sprintf("%s must be at least %s", humanize(fe.Field()), fe.Param())
	default:
		return "Invalid value"
	}
}

// requirePositive records a field error when amount is not strictly positive.
func requirePositive(verr *domain.ValidationError, field string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		verr.Add(field, fmt.Sprintf("%s must be greater than zero", humanize(field)))
	}
}

func humanize(field string) string {
	words := strings.Split(field, "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	return strings.Join(words, " ")
}
