package db

import (
	"context"
	"errors"
	"time"

	"github.com/vocdoni/subscriptions-backend/internal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (ms *MongoStorage) fetchUserFromDB(ctx context.Context, id internal.ObjectID) (*User, error) {
	result := ms.users.FindOne(ctx, bson.M{"_id": id})
	user := &User{}
	if err := result.Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// User method returns the user with the given ID. If the user doesn't exist, it
// returns ErrNotFound. If other errors occur, it returns the error.
func (ms *MongoStorage) User(id internal.ObjectID) (*User, error) {
	if id.IsZero() {
		return nil, ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.fetchUserFromDB(ctx, id)
}

// SetUser method creates or updates the user in the database. A user without
// ID is created with a new one, otherwise the non zero fields of the user
// provided are updated. Updating a user that does not exist returns
// ErrNotFound. It returns the ID of the user.
func (ms *MongoStorage) SetUser(user *User) (internal.ObjectID, error) {
	if user == nil {
		return internal.NilObjectID, ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = internal.NewObjectID()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		if _, err := ms.users.InsertOne(ctx, user); err != nil {
			user.ID = internal.NilObjectID
			return internal.NilObjectID, err
		}
		return user.ID, nil
	}
	updateDoc, err := dynamicUpdateDocument(user, nil)
	if err != nil {
		return internal.NilObjectID, err
	}
	res, err := ms.users.UpdateOne(ctx, bson.M{"_id": user.ID}, updateDoc)
	if err != nil {
		return internal.NilObjectID, err
	}
	if res.MatchedCount == 0 {
		return internal.NilObjectID, ErrNotFound
	}
	return user.ID, nil
}

// SetUserSubscriptionStatus overwrites the subscription status of the user
// with the given ID and returns the updated user. The status is stored as is,
// no validation is performed. If the user doesn't exist, it returns
// ErrNotFound.
func (ms *MongoStorage) SetUserSubscriptionStatus(id internal.ObjectID, status SubscriptionStatus) (*User, error) {
	if id.IsZero() {
		return nil, ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"subscriptionStatus": status,
		"updatedAt":          time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	user := &User{}
	if err := ms.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ExpireTrial sets the status of the user to expired only if it is still in
// trial and its trial ended before now, and returns the updated user. If no
// user matches, because it does not exist or its status or trial end date
// changed since it was read, it returns ErrNotFound.
func (ms *MongoStorage) ExpireTrial(id internal.ObjectID, now time.Time) (*User, error) {
	if id.IsZero() {
		return nil, ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                id,
		"subscriptionStatus": StatusTrial,
		"trialEndDate":       bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"subscriptionStatus": StatusExpired,
		"updatedAt":          time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	user := &User{}
	if err := ms.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UsersByStatus returns the users with the given subscription status sorted
// by trial end date.
func (ms *MongoStorage) UsersByStatus(status SubscriptionStatus) ([]User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "trialEndDate", Value: 1}})
	cur, err := ms.users.Find(ctx, bson.M{"subscriptionStatus": status}, opts)
	if err != nil {
		return nil, err
	}
	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DelUser method deletes the user with the given ID from the database.
func (ms *MongoStorage) DelUser(id internal.ObjectID) error {
	if id.IsZero() {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_, err := ms.users.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
