// Package logging builds the process loggers.
package logging

import (
	"io"
	"log"
	"os"
)

// New creates a standard library logger with a consistent prefix and flags.
// Logs go to stderr so command output on stdout stays machine-readable.
func New(component string) *log.Logger {
	return NewTo(os.Stderr, component)
}

// NewTo is New with an explicit destination.
func NewTo(w io.Writer, component string) *log.Logger {
	prefix := "[" + component + "] "
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
