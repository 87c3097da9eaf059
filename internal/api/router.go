package api

import (
	"fmt"

	"github.com/alexchny/event-relay/internal/api/handlers"
	"github.com/alexchny/event-relay/internal/api/templates"
	"github.com/alexchny/event-relay/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Sessions  *session.Manager
	Auth      handlers.Authenticator
	Requester handlers.SyncRequester
	Events    handlers.EventLister
	// Queue is nil when the backend keeps no local backlog.
	Queue  handlers.QueueInspector
	Health map[string]handlers.HealthCheck
	Logger *zap.Logger
}

// NewRouter wires the admin routes. Everything except health and login
// requires an authenticated admin session.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := templates.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		handlers.RequestLogger(d.Logger),
		handlers.Recovery(d.Logger),
		handlers.ErrorBoundary(d.Logger),
	)

	authHandler := handlers.NewAuthHandler(d.Auth, d.Sessions, d.Logger)
	eventsHandler := handlers.NewEventsHandler(d.Events, d.Queue, d.Sessions)
	healthHandler := handlers.NewHealthHandler(d.Health, d.Logger)
	syncHandler := handlers.NewSyncEventHandler(d.Requester, d.Sessions)

	r.GET("/health", healthHandler.Check)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)

	admin := r.Group("/", handlers.RequireAdmin(d.Sessions))
	admin.POST("/logout", authHandler.Logout)
	admin.GET("/events", eventsHandler.List)
	admin.GET("/events/sync-airmeet-event", syncHandler.Show)
	admin.POST("/events/sync-airmeet-event", syncHandler.Submit)

	return r, nil
}
