package db

import "time"

// defaultTimeout bounds every single database operation.
const defaultTimeout = 10 * time.Second

const (
	// subscription statuses
	StatusTrial   SubscriptionStatus = "trial"
	StatusActive  SubscriptionStatus = "active"
	StatusExpired SubscriptionStatus = "expired"
)

var knownStatuses = map[SubscriptionStatus]bool{
	StatusTrial:   true,
	StatusActive:  true,
	StatusExpired: true,
}

// IsKnownStatus reports whether the status is one of trial, active or
// expired.
func IsKnownStatus(status SubscriptionStatus) bool {
	return knownStatuses[status]
}
