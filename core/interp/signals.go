package interp

import (
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// foregroundPID is the single child the shell is blocked waiting on.
// It is published atomically so the signal forwarding path always sees
// a consistent value; -1 means "no foreground".
var foregroundPID atomic.Int64

func init() {
	foregroundPID.Store(-1)
}

// SetForeground publishes pid as the current foreground child.
func SetForeground(pid int) { foregroundPID.Store(int64(pid)) }

// ClearForeground resets the foreground to the no-child sentinel.
func ClearForeground() { foregroundPID.Store(-1) }

// ForegroundPID returns the published foreground pid, or -1.
func ForegroundPID() int { return int(foregroundPID.Load()) }

// InstallSignalHandlers wires the dispatcher: INT and TSTP relay to
// the foreground child, QUIT is ignored at the shell. The Go runtime
// installs its handlers with SA_RESTART, so the editor's blocking
// reads resume cleanly. Children are fresh processes and start with
// default dispositions.
func InstallSignalHandlers() {
	signal.Ignore(unix.SIGQUIT)

	ch := make(chan os.Signal, 8)
	signal.Notify(ch, unix.SIGINT, unix.SIGTSTP)
	go func() {
		for sig := range ch {
			pid := ForegroundPID()
			if pid > 0 {
				s, ok := sig.(unix.Signal)
				if !ok {
					continue
				}
				_ = unix.Kill(pid, s)
			}
			os.Stdout.WriteString("\n")
		}
	}()
}
