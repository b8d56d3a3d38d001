package db

import (
	"time"

	"github.com/vocdoni/subscriptions-backend/internal"
)

// SubscriptionStatus is the subscription state of a user. The value is stored
// as a free string, the known values are defined in const.go.
type SubscriptionStatus string

// User is the only persisted entity: an identifier and the state of its
// subscription.
type User struct {
	ID                 internal.ObjectID  `json:"id" bson:"_id"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" bson:"subscriptionStatus"`
	TrialEndDate       time.Time          `json:"trialEndDate" bson:"trialEndDate"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserCollection wraps the users of a JSON dump.
type UserCollection struct {
	Users []User `json:"users" bson:"users"`
}

// Collection is the JSON representation of the whole database used by
// String() and Import().
type Collection struct {
	UserCollection
}
