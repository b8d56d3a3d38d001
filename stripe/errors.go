package stripe

import (
	"errors"
	"fmt"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	CodeWebhookValidation = "webhook_validation"
	CodeInvalidEvent      = "invalid_event"
	CodeUserNotFound      = "user_not_found"
	CodeAPICallFailed     = "api_call_failed"
	CodeInvalidParams     = "invalid_params"
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the StripeError wrapped by err, or an empty
// string if there is none.
func ErrorCode(err error) string {
	var stripeErr *StripeError
	if errors.As(err, &stripeErr) {
		return stripeErr.Code
	}
	return ""
}

// IsNotFound reports whether err was caused by the Stripe API answering that
// the requested object does not exist.
func IsNotFound(err error) bool {
	var apiErr *stripeapi.Error
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound
}
