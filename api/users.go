package api

import (
	stderrors "errors"
	"net/http"

	"github.com/vocdoni/subscriptions-backend/api/apicommon"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/errors"
	"github.com/vocdoni/subscriptions-backend/internal"
	"github.com/vocdoni/subscriptions-backend/subscriptions"
	"github.com/vocdoni/subscriptions-backend/validator"
)

// checkSubscriptionHandler returns the subscription status of the user
// provided in the userId query parameter. A trial that has already ended is
// reported, and stored, as expired.
//
//	GET /api/user/check-subscription?userId=65f1c0a2b3d4e5f601234567
func (a *API) checkSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get(apicommon.UserIDQueryParam)
	if err := a.validator.ValidateVar(rawID, "required,objectid"); err != nil {
		errors.ErrMalformedURLParam.Withf("userId: %v", validator.ToValidationErrors(err)).Write(w)
		return
	}
	userID, err := internal.ObjectIDFromHex(rawID)
	if err != nil {
		errors.ErrMalformedURLParam.With("invalid userId").Write(w)
		return
	}
	status, err := a.subscriptions.CheckStatus(userID)
	if err != nil {
		if stderrors.Is(err, subscriptions.ErrUserNotFound) {
			errors.ErrUserNotFound.Write(w)
			return
		}
		errors.ErrCheckSubscription.WithCause(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.SubscriptionStatusResponse{SubscriptionStatus: status})
}

// updateSubscriptionHandler overwrites the subscription status of a user and
// returns the updated user, or a null user if it does not exist. The status
// is not checked against the known values.
//
//	POST /api/user/update-subscription
//	{"userId": "65f1c0a2b3d4e5f601234567", "status": "active"}
func (a *API) updateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidatedModel[apicommon.UpdateSubscriptionRequest](r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	userID, err := internal.ObjectIDFromHex(req.UserID)
	if err != nil {
		errors.ErrInvalidUserData.With("invalid userId").Write(w)
		return
	}
	user, err := a.subscriptions.UpdateStatus(userID, db.SubscriptionStatus(req.Status))
	if err != nil && !stderrors.Is(err, subscriptions.ErrUserNotFound) {
		errors.ErrUpdateSubscription.WithCause(err).Write(w)
		return
	}
	// an unknown user is answered with a null user
	apicommon.HTTPWriteJSON(w, &apicommon.UpdateSubscriptionResponse{
		Message: apicommon.SubscriptionUpdatedMessage,
		User:    apicommon.UserFromDB(user),
	})
}
