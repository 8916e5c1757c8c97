package container

import (
	"context"
	"fmt"
	"log"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/header"
	"github.com/MAKRANE-cpu/monographie/adapters/excel"
	"github.com/MAKRANE-cpu/monographie/adapters/gsheets"
	"github.com/MAKRANE-cpu/monographie/adapters/llm"
	"github.com/MAKRANE-cpu/monographie/adapters/postgres"
	"github.com/MAKRANE-cpu/monographie/app"
	"github.com/MAKRANE-cpu/monographie/internal"
	"github.com/MAKRANE-cpu/monographie/internal/config"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	Source      ports.SheetSource
	LLM         ports.LLMClient
	SessionRepo ports.SessionRepository

	// Services
	Assembler *app.Assembler
	Loader    *app.LoaderService
	Sessions  *app.SessionManager
	Assistant *app.AssistantService
	Monograph *app.MonographService
}

// New creates a new dependency injection container. Sessions are kept in
// memory until InitWithDatabase is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}

	c.Source = newSource(cfg.Source)
	c.Assembler = app.NewAssembler(AssemblerConfig(cfg.Cleaning), c.Logger)
	c.Loader = app.NewLoaderService(c.Source, c.Assembler, cfg.Source.CacheTTL, c.Logger)

	if cfg.AI.Enabled() {
		client, err := llm.NewClient(llm.Config{
			APIKey:       cfg.AI.OpenAIKey,
			BaseURL:      cfg.AI.BaseURL,
			DefaultModel: cfg.AI.OpenAIModel,
			Timeout:      cfg.AI.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		c.LLM = client
	} else {
		log.Printf("[Container] OPENAI_API_KEY not set, assistant and monograph are disabled")
	}

	c.Sessions = app.NewSessionManager(nil, c.Logger)
	c.initAI()
	return c, nil
}

// InitWithDatabase migrates the session table and persists sessions through it
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	c.SessionRepo = postgres.NewSessionRepository(db)
	c.Sessions = app.NewSessionManager(c.SessionRepo, c.Logger)

	log.Printf("[Container] Sessions persisted with %s", db.DriverName())
	return nil
}

// SpreadsheetID is the key the loader caches the collection under
func (c *Container) SpreadsheetID() string {
	if c.Config.Source.Kind == "excel" {
		return c.Config.Source.ExcelFile
	}
	return c.Config.Source.SpreadsheetID
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *Container) initAI() {
	cfg := c.Config.AI
	c.Assistant = app.NewAssistantService(c.LLM, app.AssistantConfig{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Excerpt: app.PromptOptions{
			Mode:     app.ParseExcerptMode(cfg.ExcerptMode),
			HeadRows: cfg.ExcerptRows,
		},
	}, c.Logger)
	c.Monograph = app.NewMonographService(c.LLM, app.MonographConfig{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: app.DefaultMonographTemperature,
	}, c.Logger)
}

func newSource(cfg config.SourceConfig) ports.SheetSource {
	if cfg.Kind == "excel" {
		return excel.NewWorkbookSource(cfg.ExcelFile)
	}
	return gsheets.NewClient(gsheets.Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		AccessToken: cfg.AccessToken,
		Timeout:     cfg.Timeout,
	})
}

// AssemblerConfig maps the cleaning settings onto the assembler
func AssemblerConfig(cfg config.CleaningConfig) app.AssemblerConfig {
	hdr := header.DefaultHeaderConfig()
	hdr.Marker = cfg.Marker
	hdr.ScanRows = cfg.ScanRows
	hdr.Scored = cfg.Scored

	naming := header.DefaultNamingConfig()
	naming.Marker = cfg.Marker
	naming.IDName = cfg.IDColumnName
	naming.Separator = cfg.Separator
	naming.Dedupe = cfg.Dedupe

	return app.AssemblerConfig{
		Header:          hdr,
		Naming:          naming,
		AggregateTokens: cfg.AggregateList,
		Mode:            app.ParseLoadMode(cfg.Mode),
	}
}
