package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vocdoni/subscriptions-backend/internal"
)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report the JSON name of the fields instead of the Go one
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation functions
	_ = v.RegisterValidation("objectid", validateObjectID)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s any) error {
	return v.validator.Struct(s)
}

// ValidateVar validates a single value against the tag provided, for
// example a query parameter against "required,objectid".
func (v *Validator) ValidateVar(field any, tag string) error {
	return v.validator.Var(field, tag)
}

// validateObjectID validates a MongoDB ObjectID hex string.
func validateObjectID(fl validator.FieldLevel) bool {
	// If the field is empty, it's valid (use required tag if it's required)
	if fl.Field().String() == "" {
		return true
	}
	return internal.IsObjectIDHex(fl.Field().String())
}
