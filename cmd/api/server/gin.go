package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usuarios-api/cmd/api/di"
	ginrouter "usuarios-api/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, ginAddr string, l *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := ginrouter.SetupRouter(c.GinHandler, ginrouter.Options{
		ServiceName:      c.Config.Logger.ServiceName,
		CORSAllowOrigins: c.Config.App.CORSAllowOrigins,
		Limiter:          c.RateLimiter,
		Metrics:          c.Metrics,
		HealthDeps:       c.HealthDeps(),
	}, l)

	l.Info("Gin REST API configured",
		zap.String("address", ginAddr),
		zap.Bool("rate_limit", c.RateLimiter != nil),
		zap.Bool("metrics", c.Metrics != nil),
	)

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
