package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	AddMigration(2, "initial_indexes", upInitialIndexes, downInitialIndexes)
}

// StatusTrialEndIndex is the name of the index used to list users by
// subscription status ordered by trial end date.
const StatusTrialEndIndex = "subscriptionStatus_1_trialEndDate_1"

func upInitialIndexes(ctx context.Context, database *mongo.Database) error {
	users := database.Collection("users")
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "subscriptionStatus", Value: 1}, // 1 for ascending order
			{Key: "trialEndDate", Value: 1},
		},
	}); err != nil {
		return fmt.Errorf("failed to create index on subscriptionStatus and trialEndDate for users: %w", err)
	}
	return nil
}

func downInitialIndexes(ctx context.Context, database *mongo.Database) error {
	return dropIndexes(ctx, database.Collection("users"), StatusTrialEndIndex)
}
