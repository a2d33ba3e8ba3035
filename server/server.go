// Package server exposes preferences, the preference dialog and per-user RSS feeds over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/kleinwatch/pkg/dialog"
	"github.com/umputun/kleinwatch/pkg/domain"
	"github.com/umputun/kleinwatch/pkg/feed"
	"github.com/umputun/kleinwatch/pkg/repository"
	"github.com/umputun/kleinwatch/pkg/validation"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/preferences.go -pkg mocks -skip-ensure -fmt goimports . Preferences
//go:generate moq -out mocks/dialog.go -pkg mocks -skip-ensure -fmt goimports . Dialog
//go:generate moq -out mocks/catalog.go -pkg mocks -skip-ensure -fmt goimports . Catalog
//go:generate moq -out mocks/listings.go -pkg mocks -skip-ensure -fmt goimports . Listings

// Server represents HTTP server instance
type Server struct {
	config      ConfigProvider
	preferences Preferences
	dialog      Dialog
	catalog     Catalog
	listings    Listings
	version     string
	debug       bool

	validator *validation.Validator
	generator *feed.Generator

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Preferences interface for preference storage operations
type Preferences interface {
	AddPreference(ctx context.Context, p domain.Preference) (domain.Preference, error)
	ListPreferences(ctx context.Context, userID int64) ([]domain.Preference, error)
	GetPreference(ctx context.Context, userID int64, id string) (domain.Preference, error)
	DeletePreference(ctx context.Context, userID int64, id string) error
	DeleteAllPreferences(ctx context.Context, userID int64) (int, error)
	SentListings(ctx context.Context, userID int64, limit int) ([]repository.SentListing, error)
}

// Dialog interface for the conversational preference flow
type Dialog interface {
	Handle(ctx context.Context, userID int64, text string) (dialog.Reply, error)
	Cancel(ctx context.Context, userID int64) error
}

// Catalog resolves location and category names of new preferences
type Catalog interface {
	ResolveLocation(city, state string) domain.Location
	FindCategory(category, subcategory string) domain.Category
}

// Listings gives read access to discovered listings
type Listings interface {
	GetListings(ctx context.Context, ids []string) ([]domain.Listing, error)
	CountListings(ctx context.Context) (int, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetBaseURL() string
}

// Params for New
type Params struct {
	Config      ConfigProvider
	Preferences Preferences
	Dialog      Dialog
	Catalog     Catalog
	Listings    Listings
	Version     string
	Debug       bool
}

// New initializes a new server instance
func New(p Params) *Server {
	s := &Server{
		config:      p.Config,
		preferences: p.Preferences,
		dialog:      p.Dialog,
		catalog:     p.Catalog,
		listings:    p.Listings,
		version:     p.Version,
		debug:       p.Debug,
		validator:   validation.New(),
		generator:   feed.NewGenerator(p.Config.GetBaseURL()),
		router:      routegroup.New(http.NewServeMux()),
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
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.lock.Lock()
		defer s.lock.Unlock()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("kleinwatch", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // 64KB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("GET /users/{user}/preferences", s.listPreferencesHandler)
		r.HandleFunc("POST /users/{user}/preferences", s.addPreferenceHandler)
		r.HandleFunc("DELETE /users/{user}/preferences", s.deleteAllPreferencesHandler)
		r.HandleFunc("GET /users/{user}/preferences/{id}", s.getPreferenceHandler)
		r.HandleFunc("DELETE /users/{user}/preferences/{id}", s.deletePreferenceHandler)

		r.HandleFunc("POST /users/{user}/dialog", s.dialogHandler)
		r.HandleFunc("DELETE /users/{user}/dialog", s.cancelDialogHandler)
	})

	s.router.HandleFunc("GET /rss/{user}", s.rssHandler)
}
