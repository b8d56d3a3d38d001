package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/subscriptions-backend/api/apicommon"
	"github.com/vocdoni/subscriptions-backend/errors"
	"github.com/vocdoni/subscriptions-backend/internal"
	"github.com/vocdoni/subscriptions-backend/stripe"
	"github.com/vocdoni/subscriptions-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// Constants for webhook handling
const (
	MaxBodyBytes = int64(65536) //revive:disable:unexported-naming
)

// StripeHandlers contains the Stripe service and handles HTTP requests
type StripeHandlers struct {
	service *stripe.Service
	metrics *metrics
}

// NewStripeHandlers creates new Stripe HTTP handlers
func NewStripeHandlers(service *stripe.Service, m *metrics) *StripeHandlers {
	return &StripeHandlers{
		service: service,
		metrics: m,
	}
}

// InitiatePayment creates a Stripe checkout session charging the amount
// requested to the user and returns the URL of the hosted payment page. The
// request body is decoded and validated by the validator middleware.
//
//	POST /api/payment/initiate
//	{"userId": "65f1c0a2b3d4e5f601234567", "amount": 9.99}
func (h *StripeHandlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		errors.ErrStripeError.With("stripe service not available").Write(w)
		return
	}
	req, ok := validator.ValidatedModel[apicommon.InitiatePaymentRequest](r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	userID, err := internal.ObjectIDFromHex(req.UserID)
	if err != nil {
		errors.ErrInvalidUserData.With("invalid userId").Write(w)
		return
	}
	if !stripe.ValidAmount(req.Amount) {
		errors.ErrInvalidAmount.Withf("amount must be between 0.01 and %.2f", stripe.MaxAmount).Write(w)
		return
	}
	paymentURL, err := h.service.CreatePaymentSession(userID, req.Amount)
	if err != nil {
		errors.ErrInitiatePayment.WithCause(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.InitiatePaymentResponse{PaymentURL: paymentURL})
}

// CheckoutSession returns the status of a checkout session, used by the
// success page to show the outcome of the payment.
//
//	GET /api/payment/checkout/{sessionID}
func (h *StripeHandlers) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		errors.ErrStripeError.With("stripe service not available").Write(w)
		return
	}
	sessionID := chi.URLParam(r, apicommon.SessionIDURLParam)
	if sessionID == "" {
		errors.ErrMalformedURLParam.With("session ID is required").Write(w)
		return
	}
	status, err := h.service.GetCheckoutSession(sessionID)
	if err != nil {
		if stripe.IsNotFound(err) {
			errors.ErrCheckoutSessionNotFound.Write(w)
			return
		}
		errors.ErrStripeError.WithCause(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, status)
}

// HandleWebhook receives the Stripe webhook events. Processed events and
// events referencing unknown users are acknowledged with 200, so Stripe does
// not retry the latter. Any other failure, including a storage error, is
// answered with 400.
//
//	POST /api/payment/webhook
func (h *StripeHandlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		errors.ErrStripeWebhookError.With("stripe service not available").Write(w)
		return
	}

	// Read and validate the request body
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.webhookEvent("", webhookRejected)
		errors.ErrStripeWebhookInput.With("could not read request body").WithCause(err).Write(w)
		return
	}

	// Get signature header
	signatureHeader := r.Header.Get("Stripe-Signature")
	if signatureHeader == "" {
		h.metrics.webhookEvent("", webhookRejected)
		errors.ErrStripeWebhookInput.With("missing Stripe-Signature header").Write(w)
		return
	}

	event, err := h.service.HandleWebhookEvent(payload, signatureHeader)
	eventType := ""
	if event != nil {
		eventType = string(event.Type)
	}
	if err != nil {
		switch stripe.ErrorCode(err) {
		case stripe.CodeWebhookValidation, stripe.CodeInvalidEvent:
			h.metrics.webhookEvent(eventType, webhookRejected)
			errors.ErrStripeWebhookInput.WithCause(err).Write(w)
		case stripe.CodeUserNotFound:
			// nothing to retry, the user does not exist
			log.Warnw("stripe webhook: event for unknown user", "type", eventType, "error", err)
			h.metrics.webhookEvent(eventType, webhookIgnored)
			apicommon.HTTPWriteOK(w)
		default:
			h.metrics.webhookEvent(eventType, webhookFailed)
			errors.ErrStripeWebhookInput.WithCause(err).WithLogLevel("error").Write(w)
		}
		return
	}

	outcome := webhookIgnored
	if event.Type == stripeapi.EventTypeCheckoutSessionCompleted {
		outcome = webhookProcessed
	}
	h.metrics.webhookEvent(eventType, outcome)
	apicommon.HTTPWriteOK(w)
}
