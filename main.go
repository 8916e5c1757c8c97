package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MAKRANE-cpu/monographie/adapters/postgres"
	"github.com/MAKRANE-cpu/monographie/internal/config"
	"github.com/MAKRANE-cpu/monographie/internal/container"
	"github.com/MAKRANE-cpu/monographie/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer c.Close()

	if appConfig.Database.URL != "" {
		db, err := postgres.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
	} else {
		log.Printf("DATABASE_URL not set, sessions are kept in memory")
	}

	// Warm the cache so the first visitor does not wait on the source
	if _, report, err := c.Loader.Load(ctx, c.SpreadsheetID()); err != nil {
		log.Printf("Initial load failed, will retry on first request: %v", err)
	} else {
		log.Printf("Loaded %d tables (%d worksheets skipped)", len(report.Loaded), len(report.Skipped))
	}

	server, err := ui.NewServer(ui.Dependencies{
		Loader:        c.Loader,
		Sessions:      c.Sessions,
		Assistant:     c.Assistant,
		Monograph:     c.Monograph,
		SpreadsheetID: c.SpreadsheetID(),
		Logger:        c.Logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
