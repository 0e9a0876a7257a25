package utils

import (
	"io"

	"github.com/MrSnakeDoc/pterostats/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a warning naming what failed.
func CloseLogged(c io.Closer, what string, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("component", what), logger.Error(err))
		return
	}
	log.Debug("closed", logger.String("component", what))
}
