package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.vocdoni.io/dvote/log"
)

// listCollectionsInDB returns the names of the collections in the given database.
// It uses the ListCollections method of the MongoDB client to get the
// collections info and decode the names from the result.
func listCollectionsInDB(ctx context.Context, database *mongo.Database) ([]string, error) {
	collectionsCursor, err := database.ListCollections(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := collectionsCursor.Close(ctx); err != nil {
			log.Warnw("failed to close collections cursor", "error", err)
		}
	}()
	collections := []bson.D{}
	if err := collectionsCursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	names := []string{}
	for _, col := range collections {
		for _, v := range col {
			if v.Key == "name" {
				names = append(names, v.Value.(string))
			}
		}
	}
	return names, nil
}

// dropIndexes drops the named indexes of the collection, ignoring the ones
// that do not exist.
func dropIndexes(ctx context.Context, collection *mongo.Collection, names ...string) error {
	for _, name := range names {
		if _, err := collection.Indexes().DropOne(ctx, name); err != nil {
			if strings.Contains(err.Error(), "IndexNotFound") || strings.Contains(err.Error(), "index not found") {
				continue
			}
			return fmt.Errorf("failed to drop index %s for collection %s: %w",
				name, collection.Name(), err)
		}
	}
	return nil
}
