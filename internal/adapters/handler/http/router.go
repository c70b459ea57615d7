package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/comitanigiacomo/kanso-stats-gateway/docs"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	SessionHandler  *SessionHandler
	OverviewHandler *OverviewHandler
	BadgeHandler    *BadgeHandler
	Sessions        middleware.UserResolver
	AccessTokens    middleware.TokenValidator
	CORSOrigins     []string
	DB              *sqlx.DB
	Redis           *redis.Client
	RateLimit       int
	Logger          *zap.Logger
	StartTime       time.Time
}

const (
	statusConnected   = "connected"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))
	// Without configured origins only same-origin callers are served.
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Authorization", "Content-Type", "Content-Length", "Accept-Encoding", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		}))
	}

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, time.Minute, logger))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := statusDisabled
		if deps.DB != nil {
			dbStatus = statusConnected
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = statusUnreachable
			}
		}

		redisStatus := statusDisabled
		if deps.Redis != nil {
			redisStatus = statusConnected
			if !cache.Healthy(ctx, deps.Redis) {
				redisStatus = statusUnreachable
			}
		}

		statusCode := http.StatusOK
		if dbStatus == statusUnreachable || redisStatus == statusUnreachable {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.SessionHandler.RegisterRoutes(apiV1)
	deps.BadgeHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.RequireSession(deps.AccessTokens, deps.Sessions))
	{
		deps.SessionHandler.RegisterProtectedRoutes(protected)
		deps.OverviewHandler.RegisterRoutes(protected)
		deps.BadgeHandler.RegisterRoutes(protected)
	}

	return router
}
