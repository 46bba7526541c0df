package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Service   string
	Env       string
	Level     string
	AddSource bool
	// Writer overrides the output stream; defaults to stdout. Tests point
	// it at a buffer so log lines can be asserted on.
	Writer io.Writer
}

// New builds the process-wide JSON logger and installs it as the slog
// default so library code logging through slog lands in the same stream.
func New(opts Options) *slog.Logger {
	if opts.Service == "" {
		opts.Service = "fulfillment"
	}
	if opts.Env == "" {
		opts.Env = "dev"
	}
	out := opts.Writer
	if out == nil {
		out = os.Stdout
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.AddSource,
	})

	base := slog.New(h).With(
		slog.String("service", opts.Service),
		slog.String("env", opts.Env),
	)

	slog.SetDefault(base)
	return base
}

// ParseLevel maps a config string to a slog level, defaulting to info on
// anything unrecognized rather than failing startup over a typo.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
