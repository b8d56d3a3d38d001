package subscriptions

import (
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/internal"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// mockMongoStorage keeps the users in memory and counts the writes.
type mockMongoStorage struct {
	users  map[internal.ObjectID]*db.User
	writes int
	err    error
	// beforeExpire runs before the conditional expiry is applied
	beforeExpire func()
}

func newMockStorage(users ...*db.User) *mockMongoStorage {
	m := &mockMongoStorage{users: map[internal.ObjectID]*db.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockMongoStorage) User(id internal.ObjectID) (*db.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockMongoStorage) SetUserSubscriptionStatus(id internal.ObjectID, status db.SubscriptionStatus) (*db.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	m.writes++
	u.SubscriptionStatus = status
	cp := *u
	return &cp, nil
}

func (m *mockMongoStorage) ExpireTrial(id internal.ObjectID, now time.Time) (*db.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.beforeExpire != nil {
		m.beforeExpire()
	}
	u, ok := m.users[id]
	if !ok || u.SubscriptionStatus != db.StatusTrial || !u.TrialEndDate.Before(now) {
		return nil, db.ErrNotFound
	}
	m.writes++
	u.SubscriptionStatus = db.StatusExpired
	cp := *u
	return &cp, nil
}

func newTestService(storage DBInterface) *Subscriptions {
	return New(&Config{DB: storage, Now: func() time.Time { return testNow }})
}

func TestNew(t *testing.T) {
	c := qt.New(t)
	c.Assert(New(nil), qt.IsNil)
	c.Assert(New(&Config{}), qt.IsNil)
	s := New(&Config{DB: newMockStorage()})
	c.Assert(s, qt.IsNotNil)
	c.Assert(s.now, qt.IsNotNil)
}

func TestTrialLapsed(t *testing.T) {
	c := qt.New(t)
	c.Assert(TrialLapsed(nil, testNow), qt.IsFalse)
	c.Assert(TrialLapsed(&db.User{
		SubscriptionStatus: db.StatusTrial,
		TrialEndDate:       testNow.Add(-time.Second),
	}, testNow), qt.IsTrue)
	// the end date itself is still inside the trial
	c.Assert(TrialLapsed(&db.User{
		SubscriptionStatus: db.StatusTrial,
		TrialEndDate:       testNow,
	}, testNow), qt.IsFalse)
	c.Assert(TrialLapsed(&db.User{
		SubscriptionStatus: db.StatusActive,
		TrialEndDate:       testNow.Add(-time.Hour),
	}, testNow), qt.IsFalse)
}

func TestCheckStatus(t *testing.T) {
	c := qt.New(t)

	c.Run("lapsed trial expires with one write", func(c *qt.C) {
		user := &db.User{
			ID:                 internal.NewObjectID(),
			SubscriptionStatus: db.StatusTrial,
			TrialEndDate:       testNow.Add(-24 * time.Hour),
		}
		storage := newMockStorage(user)
		status, err := newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, db.StatusExpired)
		c.Assert(storage.writes, qt.Equals, 1)
		c.Assert(storage.users[user.ID].SubscriptionStatus, qt.Equals, db.StatusExpired)

		// a second check finds it already expired
		status, err = newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, db.StatusExpired)
		c.Assert(storage.writes, qt.Equals, 1)
	})

	c.Run("running trial is left unchanged", func(c *qt.C) {
		user := &db.User{
			ID:                 internal.NewObjectID(),
			SubscriptionStatus: db.StatusTrial,
			TrialEndDate:       testNow.Add(24 * time.Hour),
		}
		storage := newMockStorage(user)
		status, err := newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, db.StatusTrial)
		c.Assert(storage.writes, qt.Equals, 0)
	})

	c.Run("active user is left unchanged", func(c *qt.C) {
		user := &db.User{
			ID:                 internal.NewObjectID(),
			SubscriptionStatus: db.StatusActive,
			TrialEndDate:       testNow.Add(-24 * time.Hour),
		}
		storage := newMockStorage(user)
		status, err := newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, db.StatusActive)
		c.Assert(storage.writes, qt.Equals, 0)
	})

	c.Run("activation between read and expiry is kept", func(c *qt.C) {
		user := &db.User{
			ID:                 internal.NewObjectID(),
			SubscriptionStatus: db.StatusTrial,
			TrialEndDate:       testNow.Add(-24 * time.Hour),
		}
		storage := newMockStorage(user)
		storage.beforeExpire = func() { storage.users[user.ID].SubscriptionStatus = db.StatusActive }
		status, err := newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, db.StatusActive)
		c.Assert(storage.writes, qt.Equals, 0)
		c.Assert(storage.users[user.ID].SubscriptionStatus, qt.Equals, db.StatusActive)
	})

	c.Run("user deleted between read and expiry", func(c *qt.C) {
		user := &db.User{
			ID:                 internal.NewObjectID(),
			SubscriptionStatus: db.StatusTrial,
			TrialEndDate:       testNow.Add(-24 * time.Hour),
		}
		storage := newMockStorage(user)
		storage.beforeExpire = func() { delete(storage.users, user.ID) }
		_, err := newTestService(storage).CheckStatus(user.ID)
		c.Assert(err, qt.Equals, ErrUserNotFound)
	})

	c.Run("unknown user", func(c *qt.C) {
		_, err := newTestService(newMockStorage()).CheckStatus(internal.NewObjectID())
		c.Assert(err, qt.Equals, ErrUserNotFound)
	})

	c.Run("storage failure", func(c *qt.C) {
		storage := newMockStorage()
		storage.err = fmt.Errorf("connection reset")
		_, err := newTestService(storage).CheckStatus(internal.NewObjectID())
		c.Assert(err, qt.ErrorMatches, ".*connection reset")
	})
}

func TestUpdateStatus(t *testing.T) {
	c := qt.New(t)
	user := &db.User{
		ID:                 internal.NewObjectID(),
		SubscriptionStatus: db.StatusExpired,
		TrialEndDate:       testNow.Add(-24 * time.Hour),
	}
	storage := newMockStorage(user)
	s := newTestService(storage)

	updated, err := s.UpdateStatus(user.ID, db.StatusTrial)
	c.Assert(err, qt.IsNil)
	c.Assert(updated.SubscriptionStatus, qt.Equals, db.StatusTrial)

	// values outside the known set are stored too
	updated, err = s.UpdateStatus(user.ID, "lifetime")
	c.Assert(err, qt.IsNil)
	c.Assert(updated.SubscriptionStatus, qt.Equals, db.SubscriptionStatus("lifetime"))
	c.Assert(storage.writes, qt.Equals, 2)

	_, err = s.UpdateStatus(internal.NewObjectID(), db.StatusActive)
	c.Assert(err, qt.Equals, ErrUserNotFound)
}

func TestActivate(t *testing.T) {
	c := qt.New(t)
	user := &db.User{
		ID:                 internal.NewObjectID(),
		SubscriptionStatus: db.StatusExpired,
		TrialEndDate:       testNow.Add(-24 * time.Hour),
	}
	storage := newMockStorage(user)
	s := newTestService(storage)

	updated, err := s.Activate(user.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(updated.SubscriptionStatus, qt.Equals, db.StatusActive)
	c.Assert(storage.writes, qt.Equals, 1)

	_, err = s.Activate(internal.NewObjectID())
	c.Assert(err, qt.Equals, ErrUserNotFound)
	c.Assert(storage.writes, qt.Equals, 1)

	storage.err = fmt.Errorf("connection reset")
	_, err = s.Activate(user.ID)
	c.Assert(err, qt.ErrorMatches, ".*connection reset")
}
