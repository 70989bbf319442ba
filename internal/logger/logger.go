package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// New returns the default logger: info level, JSON lines on stderr.
func New() zerolog.Logger {
	return NewWithConfig(Config{Level: "info"})
}

// NewWithConfig builds a logger. Logs go to stderr unless Output is set so
// they never mix with command output on stdout.
func NewWithConfig(config Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	var logger zerolog.Logger
	if config.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		})
	} else {
		logger = zerolog.New(out)
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", "donasi").
		Logger()
}

// Nop is a logger that discards everything; handy in tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
