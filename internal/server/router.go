package server

import (
	"context"
	"net/http"
	"time"

	"github.com/axioniz/axioniz-api/config"
	"github.com/axioniz/axioniz-api/internal/handlers"
	"github.com/axioniz/axioniz-api/internal/middleware"
	"github.com/axioniz/axioniz-api/internal/services"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// Dependencies are the wired services the router dispatches to.
type Dependencies struct {
	Config             *config.Config
	Storage            string
	Consultations      services.ConsultationServiceInterface
	AdminConsultations services.AdminConsultationsServiceInterface
	AdminAuth          services.AdminAuthServiceInterface
}

// NewRouter builds the gin engine. Background rate limiter sweeps stop when
// ctx is cancelled.
func NewRouter(ctx context.Context, deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ObservabilityMiddleware())
	if cfg.IsProduction() {
		router.Use(middleware.HTTPSRedirectMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true, // admin session cookie
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(ctx, "general", 100, 200)                   // 100 req/sec, burst of 200
	submissionRateLimiter := middleware.NewRateLimiter(ctx, "submission", 5, 10)                // 5 req/sec, burst of 10
	loginRateLimiter := middleware.NewRateLimiter(ctx, "login", rate.Every(150*time.Second), 2) // 2 req/5min

	healthHandler := handlers.NewHealthHandler(deps.Storage)
	consultationHandler := handlers.NewConsultationHandler(deps.Consultations)

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api.GET("/consultation", generalRateLimiter.Middleware(), consultationHandler.Describe)
	api.POST("/consultation",
		submissionRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(middleware.MaxSubmissionBodySize),
		consultationHandler.Submit)

	registerAdminRoutes(api, cfg, deps, generalRateLimiter, loginRateLimiter)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	return router
}

// registerAdminRoutes mounts the admin surface behind a session when auth is
// configured. Without auth the routes are open in development and absent
// everywhere else.
func registerAdminRoutes(
	api *gin.RouterGroup,
	cfg *config.Config,
	deps Dependencies,
	generalRateLimiter, loginRateLimiter *middleware.RateLimiter,
) {
	authEnabled := deps.AdminAuth.Enabled()
	if !authEnabled && !cfg.IsDevelopment() {
		logger.Warn("Admin routes disabled: ADMIN_PASSWORD or JWT_SECRET not configured")
		return
	}

	authHandler := handlers.NewAdminAuthHandler(deps.AdminAuth)
	consultationsHandler := handlers.NewAdminConsultationsHandler(deps.AdminConsultations)

	admin := api.Group("/admin")
	admin.POST("/login", loginRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(4<<10), authHandler.Login)
	admin.POST("/logout", authHandler.Logout)

	protected := admin.Group("")
	protected.Use(generalRateLimiter.Middleware())
	if authEnabled {
		protected.Use(middleware.AdminSessionMiddleware(
			deps.AdminAuth.GetTokenManager(),
			deps.AdminAuth.GetCookieDomain(),
			deps.AdminAuth.GetCookieSecure(),
		))
	} else {
		logger.Warn("Admin routes mounted WITHOUT authentication (development only)")
	}

	protected.GET("/consultations", consultationsHandler.List)
	protected.PATCH("/consultations", middleware.BodySizeLimitMiddleware(4<<10), consultationsHandler.UpdateStatus)
	protected.GET("/test-email", consultationsHandler.SendTestEmail)
}
