package discord

import (
	"log/slog"
	"time"
)

// step times a labelled section of a command and logs it at debug level.
func step(log *slog.Logger, label string, attrs ...any) func() {
	start := time.Now()
	return func() {
		log.Debug("step done", append([]any{"step", label, "elapsed", time.Since(start)}, attrs...)...)
	}
}
