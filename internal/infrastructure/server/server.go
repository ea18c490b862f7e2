package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/ari-dashboard/backend/internal/api/http"
	"github.com/ari-dashboard/backend/internal/api/middleware"
	"github.com/ari-dashboard/backend/internal/api/ws"
	"github.com/ari-dashboard/backend/internal/domain/dashboard"
	"github.com/ari-dashboard/backend/internal/domain/feed"
	"github.com/ari-dashboard/backend/internal/domain/preset"
	"github.com/ari-dashboard/backend/internal/domain/status"
	"github.com/ari-dashboard/backend/internal/domain/widget"
	"github.com/ari-dashboard/backend/internal/infrastructure/config"
	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/monitoring"
	"github.com/ari-dashboard/backend/internal/infrastructure/storage"
	"github.com/ari-dashboard/backend/internal/infrastructure/tracing"
	"github.com/ari-dashboard/backend/internal/shared/clock"
	"github.com/ari-dashboard/backend/internal/shared/utils"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	service *dashboard.Service
	hub     *ws.Hub
	watcher *preset.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// Option customizes server construction.
type Option func(*options)

type options struct {
	logger *logging.Logger
	clock  clock.Clock
}

// WithLogger replaces the logger built from configuration.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	// Initialize logger
	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing dashboard server",
		zap.String("addr", cfg.Addr()),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Strings("cors_origins", cfg.CORS.Origins),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	blobs, err := storage.NewFileStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	widgets := widget.NewStore(blobs, logger).WithClock(o.clock).WithMetrics(metrics)
	if err := widgets.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load widgets: %w", err)
	}
	presets := preset.NewStore(blobs, logger).WithClock(o.clock).WithMetrics(metrics)
	if err := presets.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}

	// Seed presets shipped alongside the binary
	if _, err := preset.NewSeeder(presets, cfg.Storage.PresetsDir, logger).Seed(ctx); err != nil {
		logger.Warn("Failed to seed presets", zap.Error(err))
	}

	var watcher *preset.Watcher
	if cfg.Storage.WatchPresets && cfg.Storage.PresetsDir != "" {
		watcher, err = preset.NewWatcher(presets, cfg.Storage.PresetsDir, 0, logger)
		if err != nil {
			logger.Warn("Preset watching disabled", zap.Error(err))
			watcher = nil
		}
	}

	hub := ws.NewHub(ws.Config{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		AllowedOrigins: cfg.CORS.Origins,
	}, logger).WithMetrics(metrics)

	service := dashboard.NewService(dashboard.Stores{
		Widgets: widgets,
		Presets: presets,
		Status:  status.NewStore(o.clock, logger),
		Feed:    feed.NewStore(o.clock, logger),
	}, hub, logger).WithMetrics(metrics)

	if cfg.Dashboard.ActivateDefaultOnStart {
		activated, err := service.ActivateDefaultPreset(ctx)
		if err != nil {
			logger.Warn("Default preset not activated", zap.Error(err))
		} else {
			logger.Info("Default preset activated on start", zap.String("preset", activated.Name))
		}
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracing.New(logger, cfg.Logging.SlowRequest)))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins...)))
	router.Use(middleware.BodyLimit(utils.MaxBodySize))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Register routes
	handlers := apihttp.NewHandlers(service, logger,
		apihttp.WithClock(o.clock),
		apihttp.WithFeedLimit(cfg.Dashboard.FeedDefaultLimit),
	)
	handlers.Register(router)

	// WebSocket
	router.GET("/socket", hub.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully",
		zap.Int("widgets", service.WidgetCount()),
		zap.Int("presets", len(service.ListPresets())),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		service: service,
		hub:     hub,
		watcher: watcher,
		ctx:     runCtx,
		cancel:  cancel,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Service returns the dashboard service.
func (s *Server) Service() *dashboard.Service {
	return s.service
}

// Run starts the HTTP server and blocks until it stops. A server stopped
// by Shutdown returns nil.
func (s *Server) Run() error {
	if s.watcher != nil {
		go s.watcher.Run(s.ctx)
	}

	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	// Disconnect displays before stopping the listener
	s.hub.Close()

	s.cancel()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("Failed to close preset watcher", zap.Error(err))
		}
	}

	var err error
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := s.http.Shutdown(ctx); shutdownErr != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(shutdownErr))
		err = fmt.Errorf("failed to shut down http server: %w", shutdownErr)
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
