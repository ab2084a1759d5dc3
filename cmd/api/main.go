package main

import (
	"net/http"
	"onboarding-service/internal/client"
	"onboarding-service/internal/config"
	"onboarding-service/internal/onboarding"
	"onboarding-service/internal/repository"
	"onboarding-service/internal/server"
	"onboarding-service/internal/service"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.WithError(err).Fatal("failed to parse config")
	}

	setupLogger(cfg.Log)

	db := client.InitSqliteClient(cfg.DatabaseURL)

	userRepo := repository.NewUserRepository(db)

	poller := onboarding.NewPoller(userRepo, cfg.Onboarding.MaxRetries, cfg.Onboarding.RetryDelay)
	sessions := onboarding.NewSessionStore(cfg.Onboarding.SessionTTL)
	onboardingService := service.NewOnboardingService(poller, userRepo, sessions, cfg.Onboarding.SlotSuccessDelay)

	srv := server.NewServer(onboardingService, cfg.Onboarding.BotURL)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("HTTP server shutdown error")
	}
}

func setupLogger(cfg config.Log) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
}
