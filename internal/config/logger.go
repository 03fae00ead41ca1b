package config

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NewLogger returns a JSON logger in production and a tinted console logger otherwise.
func NewLogger(cfg Config) *slog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, out *os.File) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level()}))
	}
	var w io.Writer = colorable.NewColorable(out)
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(out.Fd()),
	}))
}
