package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/subscriptions-backend/api"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/stripe"
	"github.com/vocdoni/subscriptions-backend/subscriptions"
	"go.vocdoni.io/dvote/log"
)

// legacyEnv maps the configuration keys to the plain environment variables
// also accepted besides the SUBSCRIPTIONS_ prefixed ones.
var legacyEnv = map[string]string{
	"port":                  "PORT",
	"mongo-url":             "MONGODB_URI",
	"stripe-api-secret":     "STRIPE_SECRET_KEY",
	"stripe-webhook-secret": "STRIPE_WEBHOOK_SECRET",
	"frontend-url":          "FRONTEND_URL",
}

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 5000, "listen port")
	flag.String("log-level", "debug", "log level (debug, info, warn, error)")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "subscriptions", "The name of the MongoDB database")
	flag.String("stripe-api-secret", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("stripe-currency", stripe.DefaultCurrency, "currency of the checkout sessions")
	flag.String("stripe-product-name", stripe.DefaultProductName, "product name shown on the checkout page")
	flag.String("frontend-url", "http://localhost:5000", "base URL the customer returns to after the checkout")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("SUBSCRIPTIONS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "SUBSCRIPTIONS_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := viper.BindEnv(key, prefixed, env); err != nil {
			panic(err)
		}
	}
	// read the configuration
	log.Init(viper.GetString("log-level"), "stdout", nil)
	host := viper.GetString("host")
	port := viper.GetInt("port")
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	if mongoURL == "" {
		log.Fatal("mongo-url is required")
	}
	stripeConf := &stripe.Config{
		APIKey:        viper.GetString("stripe-api-secret"),
		WebhookSecret: viper.GetString("stripe-webhook-secret"),
		Currency:      viper.GetString("stripe-currency"),
		ProductName:   viper.GetString("stripe-product-name"),
		FrontendURL:   viper.GetString("frontend-url"),
	}
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// create the subscriptions service, shared by the API and the Stripe webhook
	subs := subscriptions.New(&subscriptions.Config{DB: database})
	// create the Stripe service
	stripeService, err := stripe.NewService(stripeConf, subs)
	if err != nil {
		log.Fatalf("could not create the Stripe service: %v", err)
	}
	log.Infow("stripe service created", "currency", stripeConf.Currency, "frontend", stripeConf.FrontendURL)
	// create the local API server
	api.New(&api.Config{
		Host:          host,
		Port:          port,
		Subscriptions: subs,
		Stripe:        stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
