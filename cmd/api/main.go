package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/budgetwise/forecast-service/internal/digest"
	"github.com/budgetwise/forecast-service/internal/forecast"
	"github.com/budgetwise/forecast-service/internal/handler"
	"github.com/budgetwise/forecast-service/internal/integrations/gemini"
	"github.com/budgetwise/forecast-service/internal/narrative"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/budgetwise/forecast-service/internal/service"
	_ "github.com/lib/pq"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize store
	var store repository.Store
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory store, data will not survive a restart")
		store = repository.NewMemoryStore()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		pg := repository.NewPostgresStore(db)
		if err := pg.Migrate(context.Background()); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		store = pg
	}

	// Initialize layers
	svc := service.NewService(store, logger, cfg)
	forecaster := forecast.NewForecaster(store, logger)
	geminiClient := gemini.NewClient(cfg, logger)
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, chat messages will use the fallback text")
	}
	narrator := narrative.NewNarrator(forecaster, geminiClient, logger,
		narrative.WithCompletionTimeout(cfg.ChatTimeout))
	h := handler.NewHandler(svc, forecaster, narrator, logger)

	// Forecast digest
	if cfg.DigestSchedule != "" {
		job := digest.NewJob(store, forecaster, digest.NewSMTPSender(cfg, logger), logger)
		scheduler, err := digest.NewScheduler(cfg.DigestSchedule, job, logger)
		if err != nil {
			logger.Fatalf("Failed to schedule digest: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Setup router
	r := handler.NewRouter(h, cfg)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 15*time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
