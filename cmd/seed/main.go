// Command main runs the database seeder for Chirp.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of users to create")
	numTweets := flag.Int("tweets", 150, "Number of tweets to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d tweets, clean=%v\n", *numUsers, *numTweets, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	s, err := seed.NewSeeder(db, cfg)
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			log.Fatalf("❌ Index creation failed: %v", err)
		}
	}

	if err := s.Run(ctx, seed.Options{
		NumUsers:  *numUsers,
		NumTweets: *numTweets,
		Clean:     *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if err := db.Close(ctx); err != nil {
		log.Printf("error closing mongo client: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
