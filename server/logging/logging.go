package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/marcopiovanello/tubedrop/server/config"
)

const rotationInterval = 24 * time.Hour

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger writing to stdout and, when enabled,
// to a daily rotated file. The returned function flushes and closes the file.
func Setup(ctx context.Context, conf config.LoggingConfig) (func(), error) {
	writers := []io.Writer{os.Stdout}
	cleanup := func() {}

	if conf.EnableFileLogging {
		logger, err := NewRotableLogger(conf.LogPath)
		if err != nil {
			return nil, err
		}

		go func() {
			ticker := time.NewTicker(rotationInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := logger.Rotate(); err != nil {
						slog.Error("failed to rotate log file", slog.Any("err", err))
					}
				}
			}
		}()

		writers = append(writers, logger)
		cleanup = func() { logger.Close() }
	}

	slog.SetDefault(New(io.MultiWriter(writers...), ParseLevel(conf.Level)))

	return cleanup, nil
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
