// Package logger records shell diagnostics as newline-delimited JSON.
// Interactive output never goes through here; this is the app log kept
// under the user's state directory for debugging sessions after the
// fact.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper over zerolog. The zero value is a no-op, so
// components can log unconditionally.
type Logger struct {
	zl *zerolog.Logger
}

// New returns a logger writing JSON lines to w.
func New(w io.Writer) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return Logger{zl: &zl}
}

// Nop returns a logger that discards everything.
func Nop() Logger { return Logger{} }

// Open creates the app log file under dir (created if needed) and
// returns a logger writing to it plus the file for closing.
func Open(dir string) (Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return Logger{}, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return Logger{}, nil, err
	}
	return New(f), f, nil
}

// Command records an executed line and its exit status.
func (l Logger) Command(line string, status int, elapsed time.Duration) {
	if l.zl == nil {
		return
	}
	l.zl.Info().
		Str("event", "command").
		Str("line", line).
		Int("status", status).
		Dur("elapsed", elapsed).
		Send()
}

// Job records a job-table transition.
func (l Logger) Job(event string, id, pid int, command string) {
	if l.zl == nil {
		return
	}
	l.zl.Info().
		Str("event", "job."+event).
		Int("job_id", id).
		Int("pid", pid).
		Str("command", command).
		Send()
}

// Error records an internal failure within op.
func (l Logger) Error(op string, err error) {
	if l.zl == nil || err == nil {
		return
	}
	l.zl.Error().Str("op", op).Err(err).Send()
}
