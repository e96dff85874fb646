package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	redisclient "github.com/dhg/hub-backend/internal/clients/redis"
	"github.com/dhg/hub-backend/internal/db"
	"github.com/dhg/hub-backend/internal/handlers"
	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/middleware"
	"github.com/dhg/hub-backend/internal/observability"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/server"
	"github.com/dhg/hub-backend/internal/services"
	"github.com/dhg/hub-backend/internal/sse"
	"github.com/dhg/hub-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "dhg-hub-backend",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	filterProfileRepo := repos.NewFilterProfileRepo(thePG, log)
	sourceRepo := repos.NewSourceRepo(thePG, log)
	presentationRepo := repos.NewPresentationRepo(thePG, log)
	classificationRepo := repos.NewClassificationRepo(thePG, log)
	expertDocumentRepo := repos.NewExpertDocumentRepo(thePG, log)
	processingRunRepo := repos.NewProcessingRunRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Optional cross-instance fan-out
	var eventBus redisclient.EventBus
	if os.Getenv("REDIS_ADDR") != "" {
		eventBus, err = redisclient.NewEventBus(log)
		if err != nil {
			log.Warn("Redis event bus init failed; running single-instance", "error", err)
			eventBus = nil
		} else {
			if err := eventBus.StartForwarder(ctx, sseHub.Broadcast); err != nil {
				log.Warn("Redis forwarder failed to start", "error", err)
			}
			defer eventBus.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(
		thePG,
		log,
		userRepo,
		userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	filterService := services.NewFilterService(thePG, log, filterProfileRepo, sourceRepo)
	classificationService := services.NewClassificationService(log, classificationRepo)
	presentationService := services.NewPresentationService(log, presentationRepo, sourceRepo, filterService, classificationService)
	processingService := services.NewDocumentProcessingService(
		thePG,
		log,
		expertDocumentRepo,
		processingRunRepo,
		openaiClient,
		sseHub,
		eventBus,
	)
	processingService.StartWorker(ctx)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	filterProfileHandler := handlers.NewFilterProfileHandler(filterService)
	presentationHandler := handlers.NewPresentationHandler(presentationService)
	classificationHandler := handlers.NewClassificationHandler(classificationService)
	processingHandler := handlers.NewProcessingHandler(processingService)
	realtimeHandler := handlers.NewRealtimeHandler(log, sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Hub:                   sseHub,
		AuthMiddleware:        authMiddleware,
		AuthHandler:           authHandler,
		FilterProfileHandler:  filterProfileHandler,
		PresentationHandler:   presentationHandler,
		ClassificationHandler: classificationHandler,
		ProcessingHandler:     processingHandler,
		RealtimeHandler:       realtimeHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
