// Package logger configures the application-wide zerolog logger and the
// separate user-activity audit log.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls log level, format and destination.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // "console" or "json"
	Output string // "stdout", "stderr", or a file path
}

// New builds a zerolog.Logger from the given config.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
		}
		output = f
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

// Activity records user-facing analysis events. Per policy it receives
// only the ticker, a timestamp and the outcome status — never raw
// financial values.
type Activity struct {
	log zerolog.Logger
}

// NewActivity creates an activity logger appending to the given file path.
// An empty path disables activity logging.
func NewActivity(path string) (*Activity, error) {
	if path == "" {
		return &Activity{log: zerolog.Nop()}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open activity log: %w", err)
	}
	return &Activity{
		log: zerolog.New(f).With().Timestamp().Logger(),
	}, nil
}

// Record logs one analysis outcome.
func (a *Activity) Record(ticker, status string) {
	a.log.Info().
		Str("ticker", ticker).
		Str("status", status).
		Msg("analysis")
}
