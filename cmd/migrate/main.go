package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/MAKRANE-cpu/monographie/adapters/postgres"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <postgres|sqlite> <database_url> [purge_older_than, e.g. 720h]")
	}

	driver := os.Args[1]
	databaseURL := os.Args[2]

	ctx := context.Background()
	db, err := postgres.Open(ctx, driver, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema for dashboard_sessions is up to date (%s)", driver)

	if len(os.Args) < 4 {
		return
	}

	age, err := time.ParseDuration(os.Args[3])
	if err != nil || age <= 0 {
		log.Fatalf("Invalid purge age %q", os.Args[3])
	}

	repo := postgres.NewSessionRepository(db).(*postgres.SessionRepositoryImpl)
	purged, err := repo.PurgeBefore(ctx, time.Now().Add(-age))
	if err != nil {
		log.Fatalf("Purge failed: %v", err)
	}
	log.Printf("Purged %d sessions idle for more than %s", purged, age)
}
