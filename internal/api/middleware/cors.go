package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ari-dashboard/backend/internal/infrastructure/tracing"
)

// CORSConfig lists the display origins allowed to call the API.
type CORSConfig struct {
	Origins []string
	MaxAge  time.Duration
}

// DefaultCORSConfig admits origins, or the local display dev servers when
// none are given.
func DefaultCORSConfig(origins ...string) CORSConfig {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	return CORSConfig{Origins: origins, MaxAge: 12 * time.Hour}
}

// CORS admits cross-origin calls from the configured displays. Displays send
// JSON bodies and may tag requests with a trace id, which every response
// echoes back.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: cfg.Origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Content-Type", tracing.Header},
		ExposeHeaders:    []string{tracing.Header},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}
