package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-account-service/api/swagger"
	"user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/pkg/token"
)

const (
	// healthTimeout bounds each dependency check on /health.
	healthTimeout = 2 * time.Second

	swaggerDoc = "users.swagger.json"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps holds everything the router wires together.
type Deps struct {
	UserHandler  *handler.UserHandler
	Tokens       token.Helper
	Registry     *prometheus.Registry
	HealthChecks map[string]HealthCheck
	ServiceName  string
	Log          *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(d.Log))
	router.Use(middleware.Logger(d.Log))
	if d.Registry != nil {
		router.Use(middleware.NewMetrics(d.Registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry})))
	}

	router.GET("/health", healthHandler(d))

	router.GET("/swagger/*any", swaggerHandler())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", d.UserHandler.Signup)
			users.POST("/login", d.UserHandler.Signin)
			users.GET("/verifyEmail/:token", d.UserHandler.VerifyEmail)

			owner := users.Group("", middleware.Authenticate(d.Tokens))
			owner.PUT("/:email", d.UserHandler.UpdateProfile)
			owner.GET("/:email", d.UserHandler.RetrieveProfile)
		}
	}

	return router
}

// swaggerHandler serves the embedded document and the UI under one catch-all route.
func swaggerHandler() gin.HandlerFunc {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/" + swaggerDoc))
	return func(c *gin.Context) {
		if c.Param("any") == "/"+swaggerDoc {
			c.Data(http.StatusOK, "application/json", swagger.Document)
			return
		}
		ui(c.Writer, c.Request)
	}
}

func healthHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := make(gin.H, len(d.HealthChecks))

		for name, check := range d.HealthChecks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			err := check(ctx)
			cancel()

			if err != nil {
				d.Log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": d.ServiceName,
			"checks":  checks,
		})
	}
}
