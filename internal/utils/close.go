package utils

import (
	"io"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup of read-only handles.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under the given name. Meant for
// defers on stores and clients where a close error is worth knowing about.
func CloseLogged(c io.Closer, name string, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
	}
}
