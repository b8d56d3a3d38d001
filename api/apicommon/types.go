package apicommon

import (
	"time"

	"github.com/vocdoni/subscriptions-backend/db"
)

// InitiatePaymentRequest is the request body to start a payment.
// The amount is expressed in major currency units (9.99 means 999 cents).
type InitiatePaymentRequest struct {
	UserID string  `json:"userId" validate:"required,objectid"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// InitiatePaymentResponse holds the URL of the hosted checkout page.
type InitiatePaymentResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// SubscriptionStatusResponse is the response of the subscription check.
type SubscriptionStatusResponse struct {
	SubscriptionStatus db.SubscriptionStatus `json:"subscriptionStatus"`
}

// UpdateSubscriptionRequest is the request body to overwrite the
// subscription status of a user. Any non empty status is accepted.
type UpdateSubscriptionRequest struct {
	UserID string `json:"userId" validate:"required,objectid"`
	Status string `json:"status" validate:"required"`
}

// UpdateSubscriptionResponse is the response of a subscription update.
type UpdateSubscriptionResponse struct {
	Message string    `json:"message"`
	User    *UserInfo `json:"user"`
}

// UserInfo is the public representation of a user.
type UserInfo struct {
	ID                 string                `json:"id"`
	SubscriptionStatus db.SubscriptionStatus `json:"subscriptionStatus"`
	TrialEndDate       time.Time             `json:"trialEndDate"`
	CreatedAt          time.Time             `json:"createdAt,omitempty"`
	UpdatedAt          time.Time             `json:"updatedAt,omitempty"`
}

// UserFromDB converts a db.User into a UserInfo.
func UserFromDB(user *db.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		ID:                 user.ID.Hex(),
		SubscriptionStatus: user.SubscriptionStatus,
		TrialEndDate:       user.TrialEndDate,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}
