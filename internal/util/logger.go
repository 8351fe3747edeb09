// internal/util/logger.go
package util

import (
	"os"

	"go.uber.org/zap"
)

var logger *zap.Logger

// InitLogger initializes the global structured logger.
// LOG_LEVEL=debug switches to the development console encoder.
func InitLogger() {
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger = zap.Must(zap.NewDevelopment())
	} else {
		logger = zap.Must(zap.NewProduction())
	}
	zap.ReplaceGlobals(logger)
}

// GetLogger returns the initialized global logger.
func GetLogger() *zap.Logger {
	if logger == nil {
		InitLogger() // Initialize if not already initialized (should be called explicitly at app start)
	}
	return logger
}
