// Package logger constructs the zerolog loggers used across prefledger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to stdout with a "role" field for
// filtering the component the entry came from.
func New(role string) zerolog.Logger {
	return zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything. For tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
