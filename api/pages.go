package api

import (
	"net/http"

	root "github.com/vocdoni/subscriptions-backend"
	"github.com/vocdoni/subscriptions-backend/errors"
	"go.vocdoni.io/dvote/log"
)

// pages maps the frontend routes to the embedded HTML files.
var pages = map[string]string{
	paymentPageEndpoint:          "assets/payment.html",
	paymentSuccessPageEndpoint:   "assets/payment-success.html",
	paymentCancelledPageEndpoint: "assets/payment-cancelled.html",
}

// pageHandler serves one of the embedded HTML pages.
func pageHandler(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		content, err := root.Assets.ReadFile(file)
		if err != nil {
			errors.ErrGenericInternalServerError.WithCause(err).Write(w)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(content); err != nil {
			log.Warnw("failed to write page", "file", file, "error", err)
		}
	}
}
