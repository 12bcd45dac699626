package handlers

import (
	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}
