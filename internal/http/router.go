// Package httpapi wires the HTTP transport (Gin) to the question-answering
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, idempotency, rate limiting, CORS, security headers and
// compression.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/docs"
	"github.com/tbourn/go-qa-backend/internal/cache"
	"github.com/tbourn/go-qa-backend/internal/classifier"
	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/http/handlers"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/provider"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/services"
)

// maxBodyBytes caps request bodies; follow-up transcripts are the largest.
const maxBodyBytes = 1 << 20

// savedRepoShim adapts the repository free functions to the
// services.SavedRepo interface expected by the SavedAnswerService.
type savedRepoShim struct{}

// UpsertSavedAnswer proxies repo.UpsertSavedAnswer.
func (savedRepoShim) UpsertSavedAnswer(ctx context.Context, db *gorm.DB, userID string, questionID int64, tags []string, now time.Time) (*domain.SavedAnswer, error) {
	return repo.UpsertSavedAnswer(ctx, db, userID, questionID, tags, now)
}

// ListSavedAnswers proxies repo.ListSavedAnswers.
func (savedRepoShim) ListSavedAnswers(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.SavedAnswer, error) {
	return repo.ListSavedAnswers(ctx, db, userID, limit)
}

// DeleteSavedAnswer proxies repo.DeleteSavedAnswer.
func (savedRepoShim) DeleteSavedAnswer(ctx context.Context, db *gorm.DB, userID string, id int64) error {
	return repo.DeleteSavedAnswer(ctx, db, userID, id)
}

// SavedStats proxies repo.SavedStats (ETag support).
func (savedRepoShim) SavedStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return repo.SavedStats(ctx, db, userID)
}

// Deps are the collaborators built by the entrypoint. Cache may be nil to
// run uncached.
type Deps struct {
	DB       *gorm.DB
	Cache    *cache.ResponseCache
	Provider provider.Provider
}

// NewServices builds the application services over deps. The entrypoint's
// one-shot ask command shares it with the HTTP server. Idempotency is left
// unset; RegisterRoutes adds it.
func NewServices(deps Deps, cfg config.Config) handlers.Services {
	store := repo.NewConversationStore(deps.DB)
	recent := repo.NewRecentTracker(deps.DB, cfg.RecentQuestionsMax)

	qs := services.NewQuestionService(store, recent, deps.Cache, deps.Provider, classifier.New(cfg.Provider.RefusalSentinel))
	qs.MaxQuestionRunes = cfg.MaxQuestionRunes

	return handlers.Services{
		Questions:        qs,
		Conversations:    services.NewConversationService(store, cfg.HistoryMaxLimit),
		Recent:           &services.RecentService{Tracker: recent, MaxQuestionRunes: cfg.MaxQuestionRunes},
		Saved:            services.NewSavedAnswerService(deps.DB, savedRepoShim{}),
		MaxQuestionRunes: cfg.MaxQuestionRunes,
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access logging, redacted unless LOG_REDACT=false
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and security headers
//  10. Compression, skipped for event streams
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	idem := services.NewIdempotencyService(deps.DB, cfg.IdempotencyTTL)
	svcs := NewServices(deps, cfg)
	svcs.Idempotency = idem

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	} else {
		r.Use(middleware.Logger())
	}
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Exists))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(cors.New(corsConfig(cfg.CORS)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(streamPaths(cfg.APIBasePath))))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(deps.DB))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svcs)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Ask
		api.POST("/ask", h.Ask)
		api.POST("/ask/followup", h.AskFollowup)
		api.POST("/ask/stream", h.AskStream)
		api.POST("/ask/followup/stream", h.AskFollowupStream)

		// Conversations
		api.GET("/history", h.History)
		api.GET("/questions/:id/thread", h.Thread)

		// Recent questions
		api.GET("/users/me/recent-questions", h.ListRecent)
		api.POST("/users/me/recent-questions", h.AddRecent)
		api.DELETE("/users/me/recent-questions", h.ClearRecent)
		api.DELETE("/users/me/recent-questions/:id", h.DeleteRecent)

		// Saved answers
		api.POST("/saved-answers", h.SaveAnswer)
		api.GET("/saved-answers", h.ListSaved)
		api.GET("/saved-answers/tags", h.SavedTags)
		api.DELETE("/saved-answers/:id", h.DeleteSaved)
	}
}

// corsConfig allows every origin when none are configured. Credentials stay
// off in both modes since callers identify through X-User-ID.
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"},
		ExposeHeaders: middleware.ExposedHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

// streamPaths lists the SSE endpoints under base; compressing them would
// buffer events.
func streamPaths(base string) []string {
	base = strings.TrimRight(base, "/")
	return []string{base + "/ask/stream", base + "/ask/followup/stream"}
}

// health reports liveness plus database reachability.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err = sqlDB.PingContext(ctx)
			cancel()
		}
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
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
