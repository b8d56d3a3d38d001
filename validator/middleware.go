package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vocdoni/subscriptions-backend/errors"
	"go.vocdoni.io/dvote/log"
)

// MaxBodyBytes is the largest request body accepted by ValidateMiddleware.
const MaxBodyBytes = int64(65536)

// ValidatedModelKey is the context key of the decoded and validated request
// body.
type ValidatedModelKey struct{}

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns a string representation of the validation errors.
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// ToValidationErrors converts the errors returned by Validate or
// ValidateVar into ValidationErrors. Other errors are returned as is.
func ToValidationErrors(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var validationErrors ValidationErrors
	for _, fieldErr := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: getErrorMessage(fieldErr),
		})
	}
	return validationErrors
}

// ValidateMiddleware decodes the JSON request body into a new instance of the
// model type and validates it. On success the instance, a pointer to the
// model type, is stored in the request context (see ValidatedModel).
func (v *Validator) ValidateMiddleware(model any) func(next http.Handler) http.Handler {
	modelType := reflect.TypeOf(model)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a new instance of the model.
			instance := reflect.New(modelType).Interface()

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}
			if err := json.Unmarshal(body, instance); err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}
			if err := v.validator.Struct(instance); err != nil {
				validationErrors := ToValidationErrors(err)
				log.Debugw("validation errors", "errors", validationErrors)
				errors.ErrMalformedBody.WithErr(validationErrors).WithData(validationErrors).Write(w)
				return
			}
			ctx := context.WithValue(r.Context(), ValidatedModelKey{}, instance)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidatedModel retrieves the validated model stored by ValidateMiddleware.
func ValidatedModel[T any](ctx context.Context) (*T, bool) {
	model, ok := ctx.Value(ValidatedModelKey{}).(*T)
	return model, ok
}

// getErrorMessage returns a human-readable error message for a validation error.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return fmt.Sprintf("Must be greater than %s", err.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", err.Param())
	case "objectid":
		return "Invalid identifier, must be a 24 characters hex string"
	default:
		return fmt.Sprintf("Invalid value: %s", err.Tag())
	}
}
