package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/answers"
	"docqa-backend/internal/docstore"
	"docqa-backend/internal/documents"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/server/middleware"
	"docqa-backend/internal/shared/server/respond"
)

const askRateLimitGroup = "ASK"

// RouterDeps carries the constructed handlers into the router. Handlers are
// built by the caller so tests can inject fakes.
type RouterDeps struct {
	Config    config.Config
	Store     docstore.Store
	Documents *documents.Handler
	Answers   *answers.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				askRateLimitGroup: {Rate: cfg.AskRatePerSec, Burst: cfg.AskBurst},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/ask" {
					return askRateLimitGroup
				}
				return ""
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Store != nil {
			if err := deps.Store.Ping(c.Request.Context()); err != nil {
				respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Answers != nil {
		deps.Answers.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
