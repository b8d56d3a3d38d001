// Package main provides a CLI tool to manage the users stored in the
// subscriptions database. It supports the following commands:
//
//	create --trial-days N   create a user in trial and print its ID
//	show --user ID          print a user
//	list --status S         list the users with the given subscription status
//	dump                    print the whole database as JSON
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/subscriptions-backend/db"
	"github.com/vocdoni/subscriptions-backend/internal"
	"go.vocdoni.io/dvote/log"
)

const usage = `usage: subscriptions-cli <create|show|list|dump> [flags]`

func main() {
	// Define command-line flags
	flag.StringP("mongo-url", "m", "", "MongoDB connection URL")
	flag.StringP("mongo-db", "d", "subscriptions", "MongoDB database name")
	flag.IntP("trial-days", "t", 14, "length of the trial of the created user in days")
	flag.StringP("user", "u", "", "user ID to show (hex format)")
	flag.StringP("status", "s", string(db.StatusTrial), "subscription status to list")

	// Parse flags
	flag.Parse()

	// Initialize Viper for environment variable support
	viper.SetEnvPrefix("SUBSCRIPTIONS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		log.Fatalf("could not bind flags: %v", err)
	}
	viper.AutomaticEnv()
	if err := viper.BindEnv("mongo-url", "SUBSCRIPTIONS_MONGO_URL", "MONGODB_URI"); err != nil {
		log.Fatalf("could not bind env: %v", err)
	}

	// Initialize logger
	log.Init("info", "stderr", nil)

	command := flag.Arg(0)
	if command == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	mongoURL := viper.GetString("mongo-url")
	if mongoURL == "" {
		log.Fatal("mongo-url is required")
	}

	// Initialize MongoDB database
	database, err := db.New(mongoURL, viper.GetString("mongo-db"))
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer database.Close()

	switch command {
	case "create":
		err = createUser(database, viper.GetInt("trial-days"))
	case "show":
		err = showUser(database, viper.GetString("user"))
	case "list":
		err = listUsers(database, db.SubscriptionStatus(viper.GetString("status")))
	case "dump":
		fmt.Println(database.String())
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

// createUser creates a user whose trial ends trialDays from now.
func createUser(database *db.MongoStorage, trialDays int) error {
	if trialDays < 0 {
		return fmt.Errorf("trial days must not be negative")
	}
	user := &db.User{
		SubscriptionStatus: db.StatusTrial,
		TrialEndDate:       time.Now().AddDate(0, 0, trialDays).UTC(),
	}
	id, err := database.SetUser(user)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	fmt.Println(id.Hex())
	return nil
}

// showUser prints the user with the given ID.
func showUser(database *db.MongoStorage, rawID string) error {
	id, err := internal.ObjectIDFromHex(rawID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", rawID, err)
	}
	user, err := database.User(id)
	if err != nil {
		return fmt.Errorf("could not get user %s: %w", rawID, err)
	}
	printJSON(user)
	return nil
}

// listUsers prints the users with the given status.
func listUsers(database *db.MongoStorage, status db.SubscriptionStatus) error {
	users, err := database.UsersByStatus(status)
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}
	printJSON(users)
	return nil
}

// printJSON prints data as indented JSON
func printJSON(data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Error formatting data: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}
