// Package api provides the HTTP API of the subscriptions backend: payment
// initiation, subscription checks and updates, the Stripe webhook and the
// embedded payment pages.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/subscriptions-backend/api/apicommon"
	"github.com/vocdoni/subscriptions-backend/stripe"
	"github.com/vocdoni/subscriptions-backend/subscriptions"
	"github.com/vocdoni/subscriptions-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// Config holds the dependencies of the API.
type Config struct {
	Host string
	Port int
	// Subscriptions reads and updates the subscription status of the users
	Subscriptions *subscriptions.Subscriptions
	// Stripe creates the checkout sessions and handles the webhook events,
	// the payment routes answer with an error if it is nil
	Stripe *stripe.Service
}

// API type represents the API HTTP server.
type API struct {
	host          string
	port          int
	router        *chi.Mux
	subscriptions *subscriptions.Subscriptions
	stripe        *StripeHandlers
	validator     *validator.Validator
	metrics       *metrics
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	m := newMetrics()
	return &API{
		host:          conf.Host,
		port:          conf.Port,
		subscriptions: conf.Subscriptions,
		stripe:        NewStripeHandlers(conf.Stripe, m),
		validator:     validator.New(),
		metrics:       m,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Stripe-Signature"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.middleware)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	log.Infow("new route", "method", "GET", "path", pingEndpoint)
	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warnw("failed to write ping response", "error", err)
		}
	})
	log.Infow("new route", "method", "GET", "path", metricsEndpoint)
	r.Handle(metricsEndpoint, a.metrics.handler())

	// payment routes
	log.Infow("new route", "method", "POST", "path", paymentInitiateEndpoint)
	r.With(a.validator.ValidateMiddleware(apicommon.InitiatePaymentRequest{})).
		Post(paymentInitiateEndpoint, a.stripe.InitiatePayment)
	log.Infow("new route", "method", "GET", "path", paymentCheckoutSessionEndpoint)
	r.Get(paymentCheckoutSessionEndpoint, a.stripe.CheckoutSession)
	log.Infow("new route", "method", "POST", "path", paymentWebhookEndpoint)
	r.Post(paymentWebhookEndpoint, a.stripe.HandleWebhook)

	// user routes
	log.Infow("new route", "method", "GET", "path", userCheckSubscriptionEndpoint)
	r.Get(userCheckSubscriptionEndpoint, a.checkSubscriptionHandler)
	log.Infow("new route", "method", "POST", "path", userUpdateSubscriptionEndpoint)
	r.With(a.validator.ValidateMiddleware(apicommon.UpdateSubscriptionRequest{})).
		Post(userUpdateSubscriptionEndpoint, a.updateSubscriptionHandler)

	// frontend pages
	for path, page := range pages {
		log.Infow("new route", "method", "GET", "path", path)
		r.Get(path, pageHandler(page))
	}

	a.router = r
	return r
}
