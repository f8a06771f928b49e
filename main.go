package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinvarminer/adapters/postgres"
	"clinvarminer/internal/config"
	"clinvarminer/internal/container"
	"clinvarminer/internal/logging"
	"clinvarminer/internal/migration"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Init(os.Stderr, appConfig.Log.Level, appConfig.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, appConfig.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	// Schema creation is idempotent; the import job fills the tables
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create application container")
	}
	if err := appContainer.InitWithDatabase(ctx, db); err != nil {
		log.WithError(err).Fatal("Failed to initialize container")
	}
	defer appContainer.Shutdown(context.Background())

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.WithField("port", appConfig.Profiling.Port).Info("[Profiling] pprof server starting")
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.WithError(err).Error("[Profiling] pprof server failed")
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           appContainer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(appContainer.Fields()).WithField("port", appConfig.Server.Port).Info("[Server] listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("[Server] stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("[Server] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("[Server] graceful shutdown failed")
	}
}
