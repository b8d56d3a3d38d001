// Package test provides testing utilities for the subscriptions backend,
// including a MongoDB test container.
package test

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MongoImage is the docker image used for the MongoDB test container.
	MongoImage = "mongo:7"
	// MongoPort is the port exposed by the MongoDB test container.
	MongoPort = "27017/tcp"
)

// StartMongoContainer starts a MongoDB container for testing. Use
// container.Endpoint(ctx, "mongodb") to get the connection string.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        MongoImage,
				ExposedPorts: []string{MongoPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Waiting for connections"),
					wait.ForListeningPort(nat.Port(MongoPort)),
				),
			},
			Started: true,
		})
}

// RandomDatabaseName returns a random database name so every test run uses
// its own database.
func RandomDatabaseName() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return fmt.Sprintf("subscriptions-test-%d", r.Intn(1000000))
}
