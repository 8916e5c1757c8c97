package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/MAKRANE-cpu/monographie/app"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Dependencies wires the application services into the web server
type Dependencies struct {
	Loader        *app.LoaderService
	Sessions      *app.SessionManager
	Assistant     *app.AssistantService
	Monograph     *app.MonographService
	SpreadsheetID string
	Logger        *internal.Logger
}

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	logger    *internal.Logger
	now       func() time.Time

	loader        *app.LoaderService
	sessions      *app.SessionManager
	assistant     *app.AssistantService
	monograph     *app.MonographService
	spreadsheetID string
}

// NewServer parses the embedded templates and registers every route
func NewServer(deps Dependencies) (*Server, error) {
	if deps.Loader == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("loader and session manager are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:        gin.New(),
		templates:     templates,
		logger:        logger.With("Server"),
		now:           time.Now,
		loader:        deps.Loader,
		sessions:      deps.Sessions,
		assistant:     deps.Assistant,
		monograph:     deps.Monograph,
		spreadsheetID: deps.SpreadsheetID,
	}
	if s.assistant == nil {
		s.assistant = app.NewAssistantService(nil, app.AssistantConfig{}, logger)
	}
	if s.monograph == nil {
		s.monograph = app.NewMonographService(nil, app.MonographConfig{}, logger)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	pages := s.router.Group("/", s.sessionMiddleware())
	pages.GET("/", s.handleOverview)
	pages.GET("/analysis", s.handleAnalysis)
	pages.GET("/assistant", s.handleAssistant)
	pages.POST("/assistant", s.handleAsk)
	pages.POST("/assistant/reset", s.handleAssistantReset)
	pages.GET("/monograph", s.handleMonograph)
	pages.POST("/monograph", s.handleGenerateMonograph)
	pages.GET("/monograph/download", s.handleMonographDownload)
	pages.POST("/refresh", s.handleRefresh)

	api := s.router.Group("/api/tables")
	api.GET("", s.handleListTables)
	api.GET("/:name", s.handleGetTable)
	api.GET("/:name/series", s.handleSeries)
	api.GET("/:name/chart.png", s.handleChart)
	api.GET("/:name/export", s.handleExport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until the context is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Dashboard listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[Server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// tables returns the cleaned collection, loading it on first use
func (s *Server) tables(ctx context.Context) (*sheet.Collection, sheet.LoadReport, error) {
	return s.loader.Load(ctx, s.spreadsheetID)
}
