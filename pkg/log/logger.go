package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

type Fields map[string]interface{}

// New builds the service logger. The local environment gets a human readable console writer.
func New(env, level string) Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var out io.Writer = os.Stdout
	if env == "local" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// With returns a child logger that stamps every event with fields.
func With(logger Logger, fields Fields) Logger {
	if len(fields) == 0 {
		return logger
	}
	return logger.With().Fields(map[string]interface{}(fields)).Logger()
}
