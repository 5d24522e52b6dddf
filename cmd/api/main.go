package main

import (
	"os"

	"catalog-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Production reads config from the environment; .env is for local dev.
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	env := getEnv("APP_ENV", "development")
	logger.Init(env)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	Serve()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
