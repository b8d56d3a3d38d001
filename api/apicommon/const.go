// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

const (
	// UserIDQueryParam is the query parameter holding the user identifier.
	UserIDQueryParam = "userId"
	// SessionIDURLParam is the URL parameter holding a checkout session ID.
	SessionIDURLParam = "sessionID"
	// SubscriptionUpdatedMessage is returned after a successful update.
	SubscriptionUpdatedMessage = "subscription updated"
)
