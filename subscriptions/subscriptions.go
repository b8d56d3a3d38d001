// Package subscriptions holds the rules that move a user between the trial,
// active and expired subscription states.
package subscriptions

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/internal"
	"go.vocdoni.io/dvote/log"
)

// ErrUserNotFound is returned when the user referenced by a call does not exist.
var ErrUserNotFound = errors.New("user not found")

// DBInterface defines the database methods required by the Subscriptions service
type DBInterface interface {
	User(id internal.ObjectID) (*db.User, error)
	SetUserSubscriptionStatus(id internal.ObjectID, status db.SubscriptionStatus) (*db.User, error)
	ExpireTrial(id internal.ObjectID, now time.Time) (*db.User, error)
}

// Config holds the configuration for the subscriptions service.
type Config struct {
	DB DBInterface
	// Now returns the current time, defaults to time.Now.
	Now func() time.Time
}

// Subscriptions is the service that reads and updates the subscription status
// of the users.
type Subscriptions struct {
	db  DBInterface
	now func() time.Time
}

// New creates a new Subscriptions service with the given configuration.
func New(conf *Config) *Subscriptions {
	if conf == nil || conf.DB == nil {
		return nil
	}
	now := conf.Now
	if now == nil {
		now = time.Now
	}
	return &Subscriptions{
		db:  conf.DB,
		now: now,
	}
}

// TrialLapsed reports whether the user is still in trial after the end of the
// trial period.
func TrialLapsed(user *db.User, now time.Time) bool {
	if user == nil {
		return false
	}
	return user.SubscriptionStatus == db.StatusTrial && now.After(user.TrialEndDate)
}

// CheckStatus returns the current subscription status of the user. A trial
// that has already ended is moved to expired before returning.
func (s *Subscriptions) CheckStatus(userID internal.ObjectID) (db.SubscriptionStatus, error) {
	user, err := s.db.User(userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("could not get user %s: %w", userID, err)
	}
	now := s.now()
	if !TrialLapsed(user, now) {
		return user.SubscriptionStatus, nil
	}
	log.Infow("trial period ended, expiring subscription",
		"user", userID.String(), "trialEndDate", user.TrialEndDate)
	updated, err := s.db.ExpireTrial(userID, now)
	if err == nil {
		return updated.SubscriptionStatus, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("could not expire subscription of user %s: %w", userID, err)
	}
	// the user changed after being read, report its current status
	current, err := s.db.User(userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("could not get user %s: %w", userID, err)
	}
	return current.SubscriptionStatus, nil
}

// UpdateStatus overwrites the subscription status of the user and returns the
// updated user. Values other than the known statuses are stored anyway.
func (s *Subscriptions) UpdateStatus(userID internal.ObjectID, status db.SubscriptionStatus) (*db.User, error) {
	if !db.IsKnownStatus(status) {
		log.Warnw("storing unknown subscription status", "user", userID.String(), "status", status)
	}
	user, err := s.db.SetUserSubscriptionStatus(userID, status)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not update subscription of user %s: %w", userID, err)
	}
	return user, nil
}

// Activate marks the subscription of the user as paid. It returns
// ErrUserNotFound if the user does not exist.
func (s *Subscriptions) Activate(userID internal.ObjectID) (*db.User, error) {
	return s.UpdateStatus(userID, db.StatusActive)
}
