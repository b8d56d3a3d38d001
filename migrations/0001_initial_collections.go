package migrations

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(1, "initial_collections", upInitialCollections, downInitialCollections)
}

var collectionsToCreate = []string{
	"users",
	"migrations",
}

var collectionsValidators = map[string]bson.M{
	"users": usersCollectionValidator,
}

// usersCollectionValidator only checks types. The subscription status is a
// free string on purpose: the update endpoint stores whatever it receives.
var usersCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "subscriptionStatus", "trialEndDate"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":    "objectId",
				"description": "must be an ObjectId and is required",
			},
			"subscriptionStatus": bson.M{
				"bsonType":    "string",
				"description": "must be a string and is required",
			},
			"trialEndDate": bson.M{
				"bsonType":    "date",
				"description": "must be a date and is required",
			},
		},
	},
}

func upInitialCollections(ctx context.Context, database *mongo.Database) error {
	// get the current collections names to create only the missing ones
	currentCollections, err := listCollectionsInDB(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to get current collections: %w", err)
	}
	for _, name := range collectionsToCreate {
		validator, hasValidator := collectionsValidators[name]
		if slices.Contains(currentCollections, name) {
			// keep the validator of existing collections up to date
			if hasValidator {
				if err := database.RunCommand(ctx, bson.D{
					{Key: "collMod", Value: name},
					{Key: "validator", Value: validator},
				}).Err(); err != nil {
					return fmt.Errorf("failed to update %s validator: %w", name, err)
				}
			}
			continue
		}
		opts := options.CreateCollection()
		if hasValidator {
			opts = opts.SetValidator(validator).SetValidationLevel("strict").SetValidationAction("error")
		}
		if err := database.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

func downInitialCollections(context.Context, *mongo.Database) error {
	// Dropping the users collection would destroy every subscription, so the
	// down step is a no-op. The up step is idempotent anyway.
	return nil
}
