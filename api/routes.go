package api

const (
	// health check routes

	// GET /ping to check the server is alive
	pingEndpoint = "/ping"
	// GET /metrics to scrape the prometheus metrics
	metricsEndpoint = "/metrics"

	// payment routes

	// POST /api/payment/initiate to create a checkout session for a user
	paymentInitiateEndpoint = "/api/payment/initiate"
	// POST /api/payment/webhook to receive the Stripe webhook events
	paymentWebhookEndpoint = "/api/payment/webhook"
	// GET /api/payment/checkout/{sessionID} to get the status of a checkout session
	paymentCheckoutSessionEndpoint = "/api/payment/checkout/{sessionID}"

	// user routes

	// GET /api/user/check-subscription?userId={userId} to get the subscription status
	userCheckSubscriptionEndpoint = "/api/user/check-subscription"
	// POST /api/user/update-subscription to overwrite the subscription status
	userUpdateSubscriptionEndpoint = "/api/user/update-subscription"

	// frontend pages

	// GET /payment?userId={userId} shows the subscription status page
	paymentPageEndpoint = "/payment"
	// GET /payment-success is the page Stripe redirects to after paying
	paymentSuccessPageEndpoint = "/payment-success"
	// GET /payment-cancelled is the page Stripe redirects to when the customer gives up
	paymentCancelledPageEndpoint = "/payment-cancelled"
)
