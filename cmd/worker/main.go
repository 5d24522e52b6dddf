package main

import (
	"os"
	"os/signal"
	"syscall"

	"catalog-backend/pkg/container"
	"catalog-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(c, handlers)

	waitForShutdown(srv)
}

func waitForShutdown(srv *asynqServer) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Worker shutting down")
	srv.Shutdown()
	log.Info().Msg("Worker stopped")
}
