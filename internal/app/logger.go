package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var logger *slog.Logger
	if cfg != nil && cfg.LogFormat == "json" {
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
	if cfg != nil {
		logger = logger.With(slog.String("env", cfg.AppEnv))
	}
	return logger
}
