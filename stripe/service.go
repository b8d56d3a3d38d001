// Package stripe provides integration with the Stripe payment service,
// creating hosted checkout sessions and handling its webhook events.
package stripe

import (
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/internal"
	"github.com/vocdoni/subscriptions-backend/subscriptions"
	"go.vocdoni.io/dvote/log"
)

// SubscriptionsInterface defines the subscription operations required by the
// Stripe service
type SubscriptionsInterface interface {
	Activate(userID internal.ObjectID) (*db.User, error)
}

// Service provides the main business logic for Stripe operations
type Service struct {
	client        *Client
	subscriptions SubscriptionsInterface
	config        *Config
}

// NewService creates a new Stripe service
func NewService(config *Config, subs SubscriptionsInterface) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if subs == nil {
		return nil, fmt.Errorf("subscriptions service is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		client:        NewClient(config),
		subscriptions: subs,
		config:        config,
	}, nil
}

// CreatePaymentSession creates a checkout session charging amount to the
// user and returns the URL of the hosted payment page.
func (s *Service) CreatePaymentSession(userID internal.ObjectID, amount float64) (string, error) {
	session, err := s.client.CreateCheckoutSession(&CheckoutSessionParams{
		Amount:            amount,
		ClientReferenceID: userID.Hex(),
	})
	if err != nil {
		return "", err
	}
	log.Infow("stripe checkout session created",
		"session", session.ID, "user", userID.String(), "amount", UnitAmount(amount))
	return session.URL, nil
}

// GetCheckoutSession returns the status of a checkout session.
func (s *Service) GetCheckoutSession(sessionID string) (*CheckoutSessionStatus, error) {
	return s.client.GetCheckoutSession(sessionID)
}

// HandleWebhookEvent validates the signature of a webhook payload and
// processes the event. The parsed event is returned whenever the signature
// is valid, even if processing it fails.
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return nil, err
	}
	return event, s.HandleEvent(event)
}

// HandleEvent processes an already validated webhook event.
func (s *Service) HandleEvent(event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutSessionCompleted(event)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// handleCheckoutSessionCompleted activates the subscription of the user
// referenced by the completed checkout session.
func (s *Service) handleCheckoutSessionCompleted(event *stripeapi.Event) error {
	session, err := s.client.ParseCheckoutSessionFromEvent(event)
	if err != nil {
		return err
	}
	if session.ClientReferenceID == "" {
		return NewStripeError(CodeUserNotFound,
			fmt.Sprintf("checkout session %s has no client reference", session.ID), nil)
	}
	userID, err := internal.ObjectIDFromHex(session.ClientReferenceID)
	if err != nil {
		return NewStripeError(CodeInvalidEvent,
			fmt.Sprintf("invalid client reference %q in checkout session %s", session.ClientReferenceID, session.ID), err)
	}

	if _, err := s.subscriptions.Activate(userID); err != nil {
		if errors.Is(err, subscriptions.ErrUserNotFound) {
			return NewStripeError(CodeUserNotFound,
				fmt.Sprintf("user %s of checkout session %s not found", userID, session.ID), err)
		}
		return fmt.Errorf("failed to activate subscription of user %s for checkout session %s: %w",
			userID, session.ID, err)
	}
	log.Infow("stripe webhook: subscription activated", "user", userID.String(), "session", session.ID)
	return nil
}
