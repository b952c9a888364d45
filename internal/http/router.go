// Package httpapi wires the HTTP transport (Gin) to the split service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and both layers of rate limiting.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything (when enabled)
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter (uploads are the biggest bodies we accept)
//  6. Metrics
//  7. Token-bucket burst guard (all routes)
//  8. CORS and security headers
//  9. Gzip for JSON responses (downloads excluded, PDFs are non-text)
//
// The one-split-per-window limiter is route-scoped: it is attached to
// POST /split-pdf only, so status polling and downloads never consume the
// client's daily quota.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/docslice/go-pdf-splitter/internal/config"
	"github.com/docslice/go-pdf-splitter/internal/http/handlers"
	"github.com/docslice/go-pdf-splitter/internal/http/middleware"
	"github.com/docslice/go-pdf-splitter/internal/store"
)

// Version is reported by GET / and in spans.
const Version = "1.0.0"

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. Dependencies are injected: the handlers talk to svc, the daily
// limiter consumes limits.
func RegisterRoutes(r *gin.Engine, svc handlers.SplitService, limits store.RateLimitStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit: the upload cap plus multipart overhead
	r.Use(limitBody(cfg.MaxUploadBytes + 64<<10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket burst guard per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (the original API is deliberately open when no
	// allowlist is configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// cors.New only acts on requests carrying an Origin header; the
		// wildcard is advertised unconditionally so curl-style clients see
		// the open posture too.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition", "Retry-After"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// 9) Compress JSON responses; PDF streams are served raw
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/download/"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	h := handlers.New(svc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// One accepted split per client per window; denials never reach the
		// handler and never consume quota.
		api.POST("/split-pdf", middleware.DailyLimit(limits, nil), h.SplitPDF)

		api.GET("/download/:id", h.DownloadPDF)
		api.GET("/status/:id", h.FileStatus)
	}

	// API metadata
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PDF Splitter API",
			"version": Version,
			"endpoints": gin.H{
				"split_pdf": "POST /split-pdf",
				"download":  "GET /download/{file_id}",
				"status":    "GET /status/{file_id}",
				"health":    "GET /health",
			},
			"rate_limit":     "1 split per " + cfg.RateLimitWindow.String() + " per IP address",
			"file_retention": cfg.FileTTL.String() + " (" + cfg.DownloadTTL.String() + " after download)",
		})
	})
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader. Oversized uploads make downstream body reads error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
