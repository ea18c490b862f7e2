package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ari-dashboard/backend/internal/domain/dashboard"
	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/shared/clock"
)

// DefaultFeedLimit is used when GET /api/feed carries no limit.
const DefaultFeedLimit = 50

// Handlers contains all HTTP handlers
type Handlers struct {
	service   *dashboard.Service
	clock     clock.Clock
	feedLimit int
	logger    *logging.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithClock sets the time source used for health timestamps.
func WithClock(c clock.Clock) Option {
	return func(h *Handlers) { h.clock = c }
}

// WithFeedLimit overrides the default feed page size.
func WithFeedLimit(limit int) Option {
	return func(h *Handlers) {
		if limit > 0 {
			h.feedLimit = limit
		}
	}
}

// NewHandlers creates a new handler set
func NewHandlers(service *dashboard.Service, logger *logging.Logger, opts ...Option) *Handlers {
	h := &Handlers{
		service:   service,
		clock:     clock.Real(),
		feedLimit: DefaultFeedLimit,
		logger:    logger.Named("http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the REST routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Widgets
	api.GET("/widgets", h.ListWidgets)
	api.GET("/widgets/:id", h.GetWidget)
	api.POST("/widgets", h.CreateWidget)
	api.PUT("/widgets/:id", h.UpdateWidget)
	api.DELETE("/widgets/:id", h.DeleteWidget)
	api.POST("/widgets/focus/:id", h.FocusWidget)
	api.POST("/widgets/unfocus", h.UnfocusWidget)

	// Presets
	api.GET("/presets", h.ListPresets)
	api.GET("/presets/default", h.GetDefaultPreset)
	api.GET("/presets/:name", h.GetPreset)
	api.POST("/presets", h.SavePreset)
	api.PUT("/presets/activate/:name", h.ActivatePreset)
	api.DELETE("/presets/:name", h.DeletePreset)

	// Status and activity feed
	api.GET("/status", h.GetStatus)
	api.PUT("/status", h.UpdateStatus)
	api.GET("/feed", h.ListFeed)
	api.POST("/feed", h.AddFeedEntry)
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.clock.Now(),
		"widgets":   h.service.WidgetCount(),
	})
}
