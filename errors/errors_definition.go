// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// A gap in the numbering is a code used in the past, don't reuse it.
// There's no correlation between Code and HTTP Status.
var (
	// Validation errors (400)
	ErrMalformedBody      = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrInvalidUserData    = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid user information provided")}
	ErrMalformedURLParam  = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrInvalidAmount      = Error{Code: 40040, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid payment amount")}
	ErrStripeWebhookInput = Error{Code: 40041, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid stripe webhook request"), LogLevel: "warn"}

	// Not found errors (404)
	ErrUserNotFound            = Error{Code: 40018, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("user not found")}
	ErrCheckoutSessionNotFound = Error{Code: 40042, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("checkout session not found")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrStripeError                = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: payment processing failed"), LogLevel: "error"}
	ErrStripeWebhookError         = Error{Code: 50008, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: stripe webhook failed"), LogLevel: "error"}
	ErrInitiatePayment            = Error{Code: 50009, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("failed to initiate payment"), LogLevel: "error"}
	ErrCheckSubscription          = Error{Code: 50010, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("failed to check subscription"), LogLevel: "error"}
	ErrUpdateSubscription         = Error{Code: 50011, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("failed to update subscription"), LogLevel: "error"}
)
