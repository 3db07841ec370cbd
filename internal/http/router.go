// Package httpapi wires the HTTP transport (Gin) to the community services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, compression,
// metrics, CORS, security headers, authentication, idempotency, and rate
// limiting.
package httpapi

import (
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

	"github.com/tbourn/library-community/docs"
	"github.com/tbourn/library-community/internal/config"
	"github.com/tbourn/library-community/internal/domain"
	"github.com/tbourn/library-community/internal/http/handlers"
	"github.com/tbourn/library-community/internal/http/middleware"
	"github.com/tbourn/library-community/internal/services"
)

// TokenQueryParam carries the bearer token on presence beacons, which cannot
// set headers.
const TokenQueryParam = "access_token"

var (
	corsMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderIdempotencyKey,
	}
	corsExpose = []string{"X-Request-ID", "Content-Length", "Retry-After", middleware.HeaderIdempotencyReplayed}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the community API under cfg.APIBasePath + "/community".
// cache is optional; nil serves stats straight from the database.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access log (verbose in debug mode, redacted otherwise)
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics
//  7. CORS and Security headers
//
// and on the community group:
//  8. Auth: resolve the reader
//  9. Idempotency validator (needs the reader; before the limiter so replays bypass it)
//  10. Rate limiter (per reader/IP; presence beacons are exempt)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, cache services.StatsCache) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	if cfg.GinMode == gin.DebugMode {
		r.Use(middleware.Logger())
	} else {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (allow all if none configured) and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", health(db))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db
	idem := services.NewIdempotencyService(db, cfg.IdempotencyTTL)
	h := handlers.New(handlers.Deps{
		Discussions: services.NewDiscussionService(db, cfg.DefaultPageSize),
		Comments:    services.NewCommentService(db),
		Likes:       services.NewLikeService(db),
		Presence:    services.NewPresenceService(db, cfg.Presence.TTL),
		Stats:       services.NewStatsService(db, cache),
		Idempotency: idem,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	community := api.Group("/community")
	base := community.BasePath()

	community.Use(
		middleware.Auth(middleware.AuthOptions{
			Secret:         []byte(cfg.Auth.JWTSecret),
			HeaderFallback: cfg.Auth.HeaderFallback,
			QueryParam:     TokenQueryParam,
		}),
		middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{MaxLen: 200, Lookup: idem.Lookup},
			middleware.RouteScopes(map[string]middleware.ScopeFunc{
				base + "/discussions":              middleware.StaticScope(domain.IdempotencyScopeDiscussions),
				base + "/discussions/:id/comments": middleware.ParamScope("comments", "id"),
			}),
		),
		middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst,
			middleware.KeyByReaderOrIP(),
			middleware.SkipPaths(base+"/users/online"),
		).Handler(),
	)

	auth := middleware.RequireAuth()
	{
		// Discussions
		community.GET("/discussions", h.ListDiscussions)
		community.POST("/discussions", auth, h.CreateDiscussion)
		community.GET("/discussions/:id", h.GetDiscussion)

		// Comments and likes
		community.GET("/discussions/:id/comments", h.ListComments)
		community.POST("/discussions/:id/comments", auth, h.AddComment)
		community.POST("/discussions/:id/like", auth, h.ToggleLike)

		// Presence and stats
		community.GET("/users/online", h.ListOnline)
		community.PUT("/users/online", auth, h.SetPresence)
		community.POST("/users/online", auth, h.SetPresence)
		community.GET("/stats", h.GetStats)
	}
}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// allowed without credentials; otherwise allowed origins are echoed back.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     corsMethods,
				AllowHeaders:     corsHeaders,
				ExposeHeaders:    corsExpose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// health reports 200 while the database answers a ping and 503 otherwise.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
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
