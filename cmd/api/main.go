package main

import (
	"os"

	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
	"github.com/tsegaye25/load-tracking/internal/server"
)

// @title Load Tracking API
// @version 1.0
// @description Course assignment and teaching-load approval workflow API

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
