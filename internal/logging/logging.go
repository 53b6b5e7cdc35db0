package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rawhoneyguide/honeyscout/internal/config"
)

// NewWithWriter constructs a slog.Logger writing to w. Dry runs use stderr so
// the rendered report on stdout stays clean.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	handler, err := buildHandler(cfg, w)
	if err != nil {
		return nil, err
	}

	return slog.New(handler).With("service", "honeyscout"), nil
}

// Bootstrap returns the JSON logger used before configuration is loaded.
func Bootstrap() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("service", "honeyscout")
}

func buildHandler(cfg config.LoggingConfig, w io.Writer) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}
