// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, API-key authorization, idempotency, and rate
// limiting.
//
// Every API outcome, including rejections raised by middleware, is answered
// with HTTP 200 and the {success,error,code} envelope. Only the ops routes
// (/health, /metrics, /swagger) use real status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/codedsnow/feedback-api/internal/cache"
	"github.com/codedsnow/feedback-api/internal/config"
	"github.com/codedsnow/feedback-api/internal/http/handlers"
	"github.com/codedsnow/feedback-api/internal/http/middleware"
	"github.com/codedsnow/feedback-api/internal/policy"
	"github.com/codedsnow/feedback-api/internal/repo"
	"github.com/codedsnow/feedback-api/internal/services"
)

// Deps are the long-lived collaborators the routes are built on.
type Deps struct {
	DB       *gorm.DB
	Policies *policy.Table
	Cache    cache.Store // nil disables caching
}

// idempotencyStore adapts the repository free functions to the middleware's
// lookup and save callbacks.
type idempotencyStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idempotencyStore) lookup(ctx context.Context, scope middleware.IdemScope, now time.Time) (*middleware.IdemRecord, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, repo.IdemKey(scope), now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &middleware.IdemRecord{RequestHash: rec.RequestHash, Response: rec.Response}, nil
}

func (s idempotencyStore) save(ctx context.Context, scope middleware.IdemScope, requestHash, response string) error {
	_, err := repo.CreateIdempotency(ctx, s.db, repo.IdemKey(scope), requestHash, response, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent retry stored the same key first.
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. ResponseTime: X-Response-Time on every response
//  4. Logger: structured logs with redaction
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. gzip
//  8. Metrics
//  9. CORS and Security headers
//
// The API group then runs RequireAPIKey, Idempotency and the rate limiter, in
// that order: an unknown key is rejected before the body is read, and a
// replayed response bypasses the limiter.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2-3) Correlate requests and logs, report latency
	r.Use(middleware.RequestID())
	r.Use(middleware.ResponseTime())

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Api-Key"},
	}))

	// 5) Panic recovery to the in-band internal error
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 8) Prometheus metrics
	r.Use(middleware.Metrics())

	// 9) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
		CSPExempt:    []string{"/swagger/"},
	}))

	// Fallbacks: unmatched routes and methods get the banner.
	r.NoRoute(handlers.Banner)
	r.NoMethod(handlers.Banner)

	// Dependency injection: services ← repo/db/cache
	records := &services.RecordService{DB: deps.DB, Cache: deps.Cache, Timeout: cfg.RequestTimeout}
	votes := &services.VoteService{
		DB:          deps.DB,
		Cache:       deps.Cache,
		Timeout:     cfg.RequestTimeout,
		MaxAttempts: cfg.VoteMaxAttempts,
	}
	stats := func(ctx context.Context) (repo.Counts, error) { return repo.CountRecords(ctx, deps.DB) }
	h := handlers.New(records, votes, stats)

	// Ops
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	idem := idempotencyStore{db: deps.DB, ttl: cfg.IdempotencyTTL}
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAPIKeyOrIP())

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(
		middleware.RequireAPIKey(deps.Policies),
		middleware.Idempotency(middleware.IdempotencyOptions{MaxLen: 200}, idem.lookup, idem.save),
		rl.Handler(),
	)
	{
		// Records
		api.POST("/submit", h.Submit)
		api.POST("/setstatus", h.SetStatus)
		api.POST("/move", h.Move)
		api.GET("/fetch/:guild_id/:id", h.Fetch)
		api.GET("/fetchall/:guild_id", h.FetchAll)

		// Votes
		api.POST("/suggestions/upvote", h.Upvote)
		api.POST("/suggestions/downvote", h.Downvote)
	}
}

// corsMiddleware returns the CORS posture. With no configured origins every
// origin is allowed without credentials; otherwise allowed origins are echoed.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders:    []string{"X-Request-ID", "X-Response-Time", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, found := allowed[origin]; found {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
