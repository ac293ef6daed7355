package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger shared by the evaluation entrypoints. level
// comes from setup.Config (LOG_LEVEL); unrecognized values fall back to info
// rather than failing startup.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}
