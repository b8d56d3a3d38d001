package stripe

import (
	"encoding/json"
	"math"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripecheckoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// Client wraps the Stripe API client with additional functionality
type Client struct {
	config *Config
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey
	return &Client{config: config}
}

// ValidateWebhookEvent validates and parses a webhook event. Events signed
// for a different API version than the one of the library are accepted.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, c.config.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, NewStripeError(CodeWebhookValidation, "webhook signature validation failed", err)
	}
	return &event, nil
}

// MaxAmount is the highest amount, in major currency units, accepted for a
// checkout session. Stripe limits unit amounts to eight digits.
const MaxAmount = 999999.99

// ValidAmount reports whether amount is still positive once rounded to cents
// and not above MaxAmount.
func ValidAmount(amount float64) bool {
	return amount > 0 && amount <= MaxAmount && UnitAmount(amount) > 0
}

// UnitAmount converts an amount expressed in major currency units into the
// minor units expected by Stripe, rounding to the nearest cent. The result is
// only meaningful for amounts accepted by ValidAmount.
func UnitAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateCheckoutSession creates a hosted checkout session for a one time card
// payment of the given amount. The user ID travels as the client reference of
// the session so the completed checkout can be matched back to the user.
// API description https://docs.stripe.com/api/checkout/sessions
func (c *Client) CreateCheckoutSession(params *CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	if params == nil || params.ClientReferenceID == "" {
		return nil, NewStripeError(CodeInvalidParams, "client reference is required", nil)
	}
	if !ValidAmount(params.Amount) {
		return nil, NewStripeError(CodeInvalidParams, "amount out of range", nil)
	}
	unitAmount := UnitAmount(params.Amount)

	checkoutParams := &stripeapi.CheckoutSessionParams{
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeapi.String(c.config.Currency),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(c.config.ProductName),
					},
					UnitAmount: stripeapi.Int64(unitAmount),
				},
				Quantity: stripeapi.Int64(1),
			},
		},
		// one time payment, the subscription state is kept on our side
		Mode:              stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL:        stripeapi.String(c.config.successURL()),
		CancelURL:         stripeapi.String(c.config.cancelURL()),
		ClientReferenceID: stripeapi.String(params.ClientReferenceID),
	}

	session, err := stripecheckoutsession.New(checkoutParams)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create checkout session", err)
	}
	return session, nil
}

// GetCheckoutSession retrieves a checkout session by ID
func (*Client) GetCheckoutSession(sessionID string) (*CheckoutSessionStatus, error) {
	session, err := stripecheckoutsession.Get(sessionID, &stripeapi.CheckoutSessionParams{})
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to get checkout session", err)
	}
	return &CheckoutSessionStatus{
		ID:                session.ID,
		Status:            string(session.Status),
		PaymentStatus:     string(session.PaymentStatus),
		ClientReferenceID: session.ClientReferenceID,
		AmountTotal:       session.AmountTotal,
		Currency:          string(session.Currency),
	}, nil
}

// ParseCheckoutSessionFromEvent extracts the checkout session of a
// checkout.session.* webhook event.
func (*Client) ParseCheckoutSessionFromEvent(event *stripeapi.Event) (*stripeapi.CheckoutSession, error) {
	if event.Data == nil {
		return nil, NewStripeError(CodeInvalidEvent, "event has no data", nil)
	}
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, NewStripeError(CodeInvalidEvent, "failed to parse checkout session from event", err)
	}
	return &session, nil
}

// CheckoutSessionParams holds parameters for creating a checkout session
type CheckoutSessionParams struct {
	// Amount in major currency units, 9.99 means 999 cents
	Amount            float64
	ClientReferenceID string
}

// CheckoutSessionStatus represents the status of a checkout session
type CheckoutSessionStatus struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	ClientReferenceID string `json:"client_reference_id"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
}
