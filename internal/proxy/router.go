package proxy

import (
	"github.com/eternisai/fxinsight/internal/config"
	"github.com/eternisai/fxinsight/internal/logger"
	"github.com/eternisai/fxinsight/internal/metrics"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface: health, chat, metrics and the static UI.
func NewRouter(cfg *config.Config, log *logger.Logger, completer Completer, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLoggingMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", HealthHandler)
		api.POST("/chat", ChatHandler(log, completer, cfg.OpenAIAPIKey, m))
	}

	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.NoRoute(StaticHandler(cfg.StaticDir))

	return router
}
