package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/tradescope/pkg/config"
	"github.com/umputun/tradescope/pkg/refresh"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/controller.go -pkg mocks -skip-ensure -fmt goimports . Controller

//go:embed templates/*.html
var templatesFS embed.FS

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	ctrl      Controller
	version   string
	debug     bool
	templates *template.Template

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Controller is the dashboard refresh state machine
type Controller interface {
	ManualRefresh(ctx context.Context) refresh.Outcome
	ToggleAutoRefresh() bool
	View() refresh.View
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// New initializes a new server instance
func New(cfg ConfigProvider, ctrl Controller, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		ctrl:      ctrl,
		version:   version,
		debug:     debug,
		templates: template.Must(template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")),
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("tradescope", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // requests carry no payload
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// dashboard page and htmx partials
	s.router.HandleFunc("GET /{$}", s.dashboardHandler)
	s.router.Mount("/dashboard").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /content", s.contentHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)
		r.HandleFunc("POST /auto-refresh", s.autoRefreshHandler)
	})

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /dashboard", s.viewHandler)
		r.HandleFunc("POST /refresh", s.apiRefreshHandler)
		r.HandleFunc("POST /auto-refresh", s.apiAutoRefreshHandler)
	})
}

// viewPoll returns how often the page polls the content partial
func (s *Server) viewPoll() time.Duration {
	if cfg := s.config.GetFullConfig(); cfg != nil && cfg.Server.ViewPoll > 0 {
		return cfg.Server.ViewPoll
	}
	return 5 * time.Second
}
