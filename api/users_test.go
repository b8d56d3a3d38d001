package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/subscriptions-backend/api/apicommon"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/errors"
	"github.com/vocdoni/subscriptions-backend/internal"
)

func createTestUser(c *qt.C, status db.SubscriptionStatus, trialEnd time.Time) internal.ObjectID {
	id, err := testDB.SetUser(&db.User{
		SubscriptionStatus: status,
		TrialEndDate:       trialEnd,
	})
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = testDB.DelUser(id) })
	return id
}

func checkSubscription(c *qt.C, userID string) (int, []byte) {
	return request(c, http.MethodGet,
		userCheckSubscriptionEndpoint+"?"+apicommon.UserIDQueryParam+"="+userID, nil, nil)
}

func errorCode(c *qt.C, body []byte) int {
	var resp struct {
		Code int `json:"code"`
	}
	c.Assert(json.Unmarshal(body, &resp), qt.IsNil, qt.Commentf("body: %s", body))
	return resp.Code
}

func TestCheckSubscription(t *testing.T) {
	c := qt.New(t)

	c.Run("lapsed trial is expired", func(c *qt.C) {
		id := createTestUser(c, db.StatusTrial, time.Now().Add(-24*time.Hour))
		status, body := checkSubscription(c, id.Hex())
		c.Assert(status, qt.Equals, http.StatusOK)
		var resp apicommon.SubscriptionStatusResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.SubscriptionStatus, qt.Equals, db.StatusExpired)

		// the new status is persisted
		user, err := testDB.User(id)
		c.Assert(err, qt.IsNil)
		c.Assert(user.SubscriptionStatus, qt.Equals, db.StatusExpired)
	})

	c.Run("running trial", func(c *qt.C) {
		id := createTestUser(c, db.StatusTrial, time.Now().Add(24*time.Hour))
		status, body := checkSubscription(c, id.Hex())
		c.Assert(status, qt.Equals, http.StatusOK)
		var resp apicommon.SubscriptionStatusResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.SubscriptionStatus, qt.Equals, db.StatusTrial)

		user, err := testDB.User(id)
		c.Assert(err, qt.IsNil)
		c.Assert(user.SubscriptionStatus, qt.Equals, db.StatusTrial)
	})

	c.Run("active user", func(c *qt.C) {
		id := createTestUser(c, db.StatusActive, time.Now().Add(-24*time.Hour))
		status, body := checkSubscription(c, id.Hex())
		c.Assert(status, qt.Equals, http.StatusOK)
		var resp apicommon.SubscriptionStatusResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.SubscriptionStatus, qt.Equals, db.StatusActive)
	})

	c.Run("unknown user", func(c *qt.C) {
		status, body := checkSubscription(c, internal.NewObjectID().Hex())
		c.Assert(status, qt.Equals, http.StatusNotFound)
		c.Assert(errorCode(c, body), qt.Equals, errors.ErrUserNotFound.Code)
	})

	c.Run("invalid user id", func(c *qt.C) {
		status, body := checkSubscription(c, "not-an-id")
		c.Assert(status, qt.Equals, http.StatusBadRequest)
		c.Assert(errorCode(c, body), qt.Equals, errors.ErrMalformedURLParam.Code)

		status, _ = checkSubscription(c, "")
		c.Assert(status, qt.Equals, http.StatusBadRequest)
	})
}

func TestUpdateSubscription(t *testing.T) {
	c := qt.New(t)

	c.Run("known status", func(c *qt.C) {
		id := createTestUser(c, db.StatusExpired, time.Now().Add(-time.Hour))
		status, body := request(c, http.MethodPost, userUpdateSubscriptionEndpoint,
			mustMarshal(apicommon.UpdateSubscriptionRequest{UserID: id.Hex(), Status: "active"}), nil)
		c.Assert(status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", body))

		var resp apicommon.UpdateSubscriptionResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.Message, qt.Equals, apicommon.SubscriptionUpdatedMessage)
		c.Assert(resp.User, qt.IsNotNil)
		c.Assert(resp.User.ID, qt.Equals, id.Hex())
		c.Assert(resp.User.SubscriptionStatus, qt.Equals, db.StatusActive)

		user, err := testDB.User(id)
		c.Assert(err, qt.IsNil)
		c.Assert(user.SubscriptionStatus, qt.Equals, db.StatusActive)
	})

	c.Run("unknown status is stored", func(c *qt.C) {
		id := createTestUser(c, db.StatusTrial, time.Now().Add(time.Hour))
		status, body := request(c, http.MethodPost, userUpdateSubscriptionEndpoint,
			mustMarshal(apicommon.UpdateSubscriptionRequest{UserID: id.Hex(), Status: "lifetime"}), nil)
		c.Assert(status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", body))

		var resp apicommon.UpdateSubscriptionResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.User.SubscriptionStatus, qt.Equals, db.SubscriptionStatus("lifetime"))

		user, err := testDB.User(id)
		c.Assert(err, qt.IsNil)
		c.Assert(user.SubscriptionStatus, qt.Equals, db.SubscriptionStatus("lifetime"))
	})

	c.Run("unknown user gets a null user", func(c *qt.C) {
		id := internal.NewObjectID()
		status, body := request(c, http.MethodPost, userUpdateSubscriptionEndpoint,
			mustMarshal(apicommon.UpdateSubscriptionRequest{UserID: id.Hex(), Status: "active"}), nil)
		c.Assert(status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", body))
		c.Assert(string(body), qt.Contains, `"user":null`)

		var resp apicommon.UpdateSubscriptionResponse
		c.Assert(json.Unmarshal(body, &resp), qt.IsNil)
		c.Assert(resp.Message, qt.Equals, apicommon.SubscriptionUpdatedMessage)
		c.Assert(resp.User, qt.IsNil)

		// nothing is created
		_, err := testDB.User(id)
		c.Assert(err, qt.Equals, db.ErrNotFound)
	})

	c.Run("invalid bodies", func(c *qt.C) {
		for _, body := range [][]byte{
			[]byte(`{"userId": "65f1c0a2b3d4e5f601234567"}`),
			[]byte(`{"status": "active"}`),
			[]byte(`{"userId": "user-1", "status": "active"}`),
			[]byte(`not json`),
		} {
			status, resp := request(c, http.MethodPost, userUpdateSubscriptionEndpoint, body, nil)
			c.Assert(status, qt.Equals, http.StatusBadRequest, qt.Commentf("body: %s", body))
			c.Assert(errorCode(c, resp), qt.Equals, errors.ErrMalformedBody.Code)
		}
	})
}
