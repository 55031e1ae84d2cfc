package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calbook/config"
	"calbook/database"
	recordsRepo "calbook/database/repository/records"
	sessionRepo "calbook/database/repository/session"
	"calbook/handlers"
	"calbook/middleware"
	"calbook/routes"
	"calbook/services/booking"
	"calbook/services/calendar"
	ai "calbook/services/intelligence"
	"calbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories.
	var records recordsRepo.BookingRecordRepository
	if cfg.DatabaseURL != "" {
		if err := database.InitDB(ctx); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		records = recordsRepo.NewMongoRecordRepo(database.Database())
	} else {
		logger.Info("main: no DATABASE_URL set, keeping booking records in memory")
		records = recordsRepo.NewMemoryRecordRepo()
	}

	var sessions sessionRepo.SessionStore
	switch cfg.SessionStore {
	case "redis":
		client, err := utils.GetSessionCacheClient()
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		sessions = sessionRepo.NewRedisSessionStore(client, cfg.SessionTTL())
	default:
		sessions = sessionRepo.NewMemorySessionStore(cfg.SessionTTL())
	}

	// services.
	gateway := newGateway(ctx, cfg, logger)
	calendarService := calendar.NewCalendarService(gateway, records, calendar.Options{
		Retry: calendar.RetryPolicy{
			MaxAttempts:     cfg.RetryMaxAttempts,
			InitialInterval: time.Duration(cfg.RetryInitialIntervalMs) * time.Millisecond,
			MaxInterval:     time.Duration(cfg.RetryMaxIntervalMs) * time.Millisecond,
			AttemptTimeout:  cfg.UpstreamTimeout(),
		},
		CacheSize: cfg.AvailabilityCacheSize,
		CacheTTL:  cfg.AvailabilityCacheTTL(),
		Location:  cfg.Location(),
	}, logger.Named("calendar"))

	machine := booking.NewMachine(booking.NewAssembler(
		booking.NewNaturalResolver(cfg.Location()), cfg.Location(), logger.Named("booking")))

	var generator ai.TextGenerator
	if cfg.LLMEnabled() {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, ai.NewCalendarTools(calendarService))
		if err != nil {
			logger.Error("main: language model unavailable, using rule-based responder", zap.Error(err))
		} else {
			defer func() { _ = gemini.Close() }()
			generator = gemini
		}
	}
	responder, err := ai.NewResponder(cfg, machine, generator, logger.Named("responder"))
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	logger.Info("main: chat responder selected", zap.String("responder", responder.Name()))
	conversationService := ai.NewConversationService(responder, sessions, calendarService, logger.Named("conversation"))

	// handlers.
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	chatHandler := handlers.NewChatHandler(conversationService)
	healthHandler := handlers.NewHealthHandler(map[string]utils.HealthCheck{
		"gateway":  calendarService.Health,
		"sessions": conversationService.Ping,
	}, cfg.UpstreamTimeout())

	handlerBundle := &handlers.HandlerBundle{
		Limits: handlers.RouteLimits{
			Events:       cfg.RateLimitEvents,
			Availability: cfg.RateLimitAvailability,
			Suggest:      cfg.RateLimitSuggest,
			GetEvent:     cfg.RateLimitGetEvent,
			CancelEvent:  cfg.RateLimitCancelEvent,
			Chat:         cfg.RateLimitChat,
		},
		RootHandler:         healthHandler.Root,
		HealthHandler:       healthHandler.Health,
		CreateEventHandler:  calendarHandler.CreateEvent,
		AvailabilityHandler: calendarHandler.Availability,
		SuggestSlotsHandler: calendarHandler.SuggestSlots,
		GetEventHandler:     calendarHandler.GetEvent,
		CancelEventHandler:  calendarHandler.CancelEvent,
		ChatHandler:         chatHandler.Chat,
		CancelChatHandler:   chatHandler.CancelChat,
	}

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		logger.Sugar().Fatalf("main: invalid TRUSTED_PROXIES: %v", err)
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: closing MongoDB: %v", err)
	}
	if utils.SessionCacheClient != nil {
		_ = utils.SessionCacheClient.Close()
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func newGateway(ctx context.Context, cfg config.Config, logger *zap.Logger) calendar.Gateway {
	if cfg.CalendarProvider != "google" {
		logger.Info("main: using in-memory calendar")
		return calendar.NewMemoryGateway(0, cfg.Location().String())
	}
	gw, err := calendar.NewGoogleGateway(ctx, cfg.CalendarID, calendar.ServiceAccountOptions(cfg.GoogleCredentialsFile)...)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	logger.Info("main: using Google Calendar", zap.String("calendarID", cfg.CalendarID))
	return gw
}
