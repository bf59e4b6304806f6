package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/api/handlers"
	"github.com/psgpraveen/PolicyPilot/internal/api/middleware"
	"github.com/psgpraveen/PolicyPilot/internal/auth"
	"github.com/psgpraveen/PolicyPilot/internal/services"
	"github.com/psgpraveen/PolicyPilot/pkg/metrics"
)

type Router struct {
	engine          *gin.Engine
	logger          *zap.Logger
	metrics         *metrics.MetricsCollector
	authHandler     *handlers.AuthHandler
	clientHandler   *handlers.ClientHandler
	categoryHandler *handlers.CategoryHandler
	policyHandler   *handlers.PolicyHandler
	authMiddleware  *middleware.AuthMiddleware
	reqMiddleware   *middleware.RequestMiddleware
	corsOrigin      string
}

func NewRouter(
	logger *zap.Logger,
	metricsCollector *metrics.MetricsCollector,
	tokens *auth.Manager,
	authService *services.AuthService,
	clientService *services.ClientService,
	categoryService *services.CategoryService,
	policyService *services.PolicyService,
	corsOrigin string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(reqMiddleware.CORS(corsOrigin))

	return &Router{
		engine:          engine,
		logger:          logger,
		metrics:         metricsCollector,
		authHandler:     handlers.NewAuthHandler(authService, logger),
		clientHandler:   handlers.NewClientHandler(clientService, logger),
		categoryHandler: handlers.NewCategoryHandler(categoryService, logger),
		policyHandler:   handlers.NewPolicyHandler(policyService, logger),
		authMiddleware:  authMiddleware,
		reqMiddleware:   reqMiddleware,
		corsOrigin:      corsOrigin,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
			"sizes":     r.metrics.GetSizes(),
		})
	})

	authRoutes := r.engine.Group("/api/auth")
	{
		authRoutes.POST("/signup", r.authHandler.Signup)
		authRoutes.POST("/login", r.authHandler.Login)
		authRoutes.POST("/logout", r.authHandler.Logout)
	}

	authorized := r.engine.Group("/api")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.GET("/clients", r.clientHandler.List)
		authorized.POST("/clients", r.clientHandler.Create)
		authorized.PUT("/clients/:id", r.clientHandler.Update)
		authorized.DELETE("/clients/:id", r.clientHandler.Delete)

		authorized.GET("/categories", r.categoryHandler.List)
		authorized.POST("/categories", r.categoryHandler.Create)
		authorized.PUT("/categories/:id", r.categoryHandler.Update)
		authorized.DELETE("/categories/:id", r.categoryHandler.Delete)

		authorized.GET("/policies", r.policyHandler.List)
		authorized.POST("/policies", r.policyHandler.Create)
		authorized.PUT("/policies/:id", r.policyHandler.Update)
		authorized.DELETE("/policies/:id", r.policyHandler.Delete)
		authorized.GET("/policies/:id/attachment", r.policyHandler.GetAttachment)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
