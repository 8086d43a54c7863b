package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"usuarios-api/api"
	"usuarios-api/internal/adapter/gin/handler"
	"usuarios-api/internal/adapter/gin/middleware"
	"usuarios-api/internal/adapter/ratelimit"
	"usuarios-api/internal/metrics"
)

const (
	rootMessage = "Server is running!"
	openAPIPath = "/openapi/usuarios.json"
)

// Options holds the optional parts of the router. A nil Limiter or Metrics disables that feature.
type Options struct {
	ServiceName      string
	CORSAllowOrigins []string
	Limiter          ratelimit.Limiter
	Metrics          *metrics.Provider
	HealthDeps       map[string]handler.Pinger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(corsMiddleware(opts.CORSAllowOrigins))
	if opts.Limiter != nil {
		router.Use(middleware.RateLimiter(opts.Limiter, log))
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, rootMessage)
	})
	router.GET("/health", handler.Health(opts.ServiceName, opts.HealthDeps))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// API docs
	router.GET(openAPIPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", api.SwaggerJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))

	users := router.Group("/usuarios")
	{
		for _, p := range []string{"", "/"} {
			users.POST(p, userHandler.CreateUser)
			users.GET(p, userHandler.ListUsers)
		}
		// static /buscar takes precedence over /:id
		users.GET("/buscar", userHandler.SearchByCity)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
