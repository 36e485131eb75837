package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bi-reports/internal/app"
	"bi-reports/internal/config"
	"bi-reports/internal/xlsx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := buildLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Unable to build logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	pipeline := app.New(cfg, logger, xlsx.NewReader(), xlsx.NewWriter())
	if err := pipeline.Run(); err != nil {
		logger.Error("report run aborted", zap.Error(err))
		os.Exit(1)
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
