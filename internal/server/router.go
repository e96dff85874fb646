package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dhg/hub-backend/internal/handlers"
	"github.com/dhg/hub-backend/internal/middleware"
	"github.com/dhg/hub-backend/internal/sse"
)

type RouterConfig struct {
	Hub                   *sse.SSEHub
	AuthMiddleware        *middleware.AuthMiddleware
	AuthHandler           *handlers.AuthHandler
	FilterProfileHandler  *handlers.FilterProfileHandler
	PresentationHandler   *handlers.PresentationHandler
	ClassificationHandler *handlers.ClassificationHandler
	ProcessingHandler     *handlers.ProcessingHandler
	RealtimeHandler       *handlers.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("dhg-hub-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(middleware.FlushSSEData(cfg.Hub))
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Filter profiles
	protected.GET("/filter-profiles", cfg.FilterProfileHandler.List)
	protected.GET("/filter-profiles/active", cfg.FilterProfileHandler.GetActive)
	protected.PUT("/filter-profiles/:id/activate", cfg.FilterProfileHandler.Activate)
	// Presentations
	protected.GET("/presentations", cfg.PresentationHandler.List)
	protected.GET("/presentations/:id", cfg.PresentationHandler.Get)
	// Subjects
	protected.GET("/subjects", cfg.ClassificationHandler.ListSubjects)
	// Document processing
	protected.POST("/expert-documents/:id/process", cfg.ProcessingHandler.Enqueue)
	protected.GET("/processing-runs/:id", cfg.ProcessingHandler.GetRun)
	// SSE
	protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	protected.POST("/sse/subscribe", cfg.RealtimeHandler.Subscribe)
	protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.Unsubscribe)

	return router
}

func allowedOrigins() []string {
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return origins
	}
	return []string{
		"http://localhost:80",
		"http://localhost:3000",
		"http://localhost:5173",
	}
}
