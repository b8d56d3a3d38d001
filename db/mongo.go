package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

// ResetDBEnvVar is the environment variable that, when set to any value,
// makes New drop the database before applying the migrations.
const ResetDBEnvVar = "SUBSCRIPTIONS_MONGO_RESET_DB"

// MongoStorage uses an external MongoDB service for storing the users and
// their subscription status.
type MongoStorage struct {
	DBClient *mongo.Client
	database string
	keysLock sync.RWMutex

	users      *mongo.Collection
	migrations *mongo.Collection
}

// New connects to the MongoDB server at url, selects the database provided
// and brings its schema up to date. If the ResetDBEnvVar environment variable
// is set, the database is dropped first.
func New(url, database string) (*MongoStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "database", database)
	// preparing connection
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	// create a new client with the connection options
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	ms := &MongoStorage{
		DBClient:   client,
		database:   database,
		users:      client.Database(database).Collection("users"),
		migrations: client.Database(database).Collection("migrations"),
	}
	// if reset flag is enabled, Reset drops the database and runs the
	// migrations again, else just run the pending migrations
	if reset := os.Getenv(ResetDBEnvVar); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
		return ms, nil
	}
	if err := ms.RunMigrationsUp(); err != nil {
		return nil, err
	}
	return ms, nil
}

// Close disconnects from the MongoDB server.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.DBClient.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops the whole database and recreates the collections and indexes
// applying every migration again.
func (ms *MongoStorage) Reset() error {
	log.Infow("resetting database", "database", ms.database)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.DBClient.Database(ms.database).Drop(ctx); err != nil {
		return err
	}
	return ms.RunMigrationsUp()
}

// String returns a JSON dump of the users collection.
func (ms *MongoStorage) String() string {
	const contextTimeout = 30 * time.Second
	ms.keysLock.RLock()
	defer ms.keysLock.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), contextTimeout)
	defer cancel()
	cur, err := ms.users.Find(ctx, bson.D{{}})
	if err != nil {
		log.Warn(err)
		return "{}"
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			log.Warnw("failed to close users cursor", "error", err)
		}
	}()

	var users UserCollection
	for cur.Next(ctx) {
		var user User
		if err := cur.Decode(&user); err != nil {
			log.Warn(err)
			continue
		}
		users.Users = append(users.Users, user)
	}

	data, err := json.Marshal(&Collection{users})
	if err != nil {
		log.Warn(err)
	}
	return string(data)
}

// Import imports a JSON dataset produced by String() into the database.
func (ms *MongoStorage) Import(jsonData []byte) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()

	log.Infof("importing database")
	var collection Collection
	if err := json.Unmarshal(jsonData, &collection); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	log.Infow("importing users", "count", len(collection.Users))
	for _, user := range collection.Users {
		filter := bson.M{"_id": user.ID}
		update := bson.M{"$set": user}
		opts := options.Update().SetUpsert(true)
		if _, err := ms.users.UpdateOne(ctx, filter, update, opts); err != nil {
			log.Warnw("error upserting user", "err", err, "user", user.ID)
		}
	}

	log.Infof("imported database!")
	return nil
}
