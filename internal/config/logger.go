package config

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var timeFormatOnce sync.Once

// NewLogger creates the root application logger.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg LoggerConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	timeFormatOnce.Do(func() { zerolog.TimeFieldFormat = time.RFC3339 })

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("app", "pizzeria-api").
		Logger()
}
