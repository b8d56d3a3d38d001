package stripe

import (
	"fmt"
	"strings"
)

const (
	// DefaultCurrency is the currency used for the checkout line item when
	// none is configured.
	DefaultCurrency = "usd"
	// DefaultProductName is the product name shown on the hosted checkout page.
	DefaultProductName = "Premium subscription"
)

// Config holds the complete Stripe configuration
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	Currency      string `yaml:"currency" json:"currency"`
	ProductName   string `yaml:"product_name" json:"product_name"`
	// FrontendURL is the base URL the customer is sent back to after the
	// checkout, either to {FrontendURL}/payment-success or to
	// {FrontendURL}/payment-cancelled.
	FrontendURL string `yaml:"frontend_url" json:"frontend_url"`
}

// Validate checks the required fields and fills the optional ones with their
// defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("stripe API key is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("frontend URL is required")
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.ProductName == "" {
		c.ProductName = DefaultProductName
	}
	return nil
}

func (c *Config) successURL() string {
	return c.FrontendURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func (c *Config) cancelURL() string {
	return c.FrontendURL + "/payment-cancelled"
}
