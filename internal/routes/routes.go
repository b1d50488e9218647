package routes

import (
	"bilca_backend/internal/handlers"
	"bilca_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	MetricsEnabled bool
	MetricsPath    string
}

// RegisterRoutes mounts the API under /api/v1 plus the operational endpoints.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	opts Options,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		ginRouter.GET(path, gin.WrapH(promhttp.Handler()))
		logger.Info("Metrics route registered", "path", path)
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.HireHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.NotificationHandler.RegisterRoutes(api)
	}
}
