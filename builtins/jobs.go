package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
	"golang.org/x/sys/unix"
)

// Jobs lists the background and stopped jobs in insertion order. -l
// adds the pid column.
func Jobs(p *interp.Proc) int {
	cmd := &SimpleCommand{
		Use:   "jobs [-l]",
		Short: "List background jobs.",
	}
	opt := cmd.Flags()
	long := opt.Bool('l', "also show process ids")

	return cmd.Run(p, func() int {
		for _, j := range p.Interp.Jobs.Jobs() {
			if *long {
				fmt.Fprintf(p.Stdout, "[%d] %d %s: %s\n", j.ID, j.PID, j.Command, j.Status)
			} else {
				fmt.Fprintf(p.Stdout, "[%d] %s: %s\n", j.ID, j.Command, j.Status)
			}
		}
		return 0
	})
}

// Kill sends a signal to processes: `kill [-SIGNUM] PID...`.
func Kill(p *interp.Proc) int {
	if len(p.Args) < 2 {
		printError(p, "kill: usage: kill [-SIGNAL] PID...\n")
		return interp.StatusUsage
	}

	sig := unix.SIGTERM
	start := 1
	if strings.HasPrefix(p.Args[1], "-") {
		n, err := strconv.Atoi(p.Args[1][1:])
		if err != nil {
			printError(p, "kill: %s: invalid signal specification\n", p.Args[1])
			return 1
		}
		sig = unix.Signal(n)
		start = 2
	}

	status := 0
	for _, arg := range p.Args[start:] {
		pid, err := strconv.Atoi(arg)
		if err != nil {
			printError(p, "kill: %s: arguments must be process ids\n", arg)
			status = 1
			continue
		}
		if err := unix.Kill(pid, sig); err != nil {
			printError(p, "kill: (%d) - %v\n", pid, err)
			status = 1
		}
	}
	return status
}

// Ping is the original signal-sending form: `ping PID SIGNAL`. Only
// pids present in the job table are addressable.
func Ping(p *interp.Proc) int {
	if len(p.Args) != 3 {
		printError(p, "ping: usage: ping PID SIGNAL\n")
		return interp.StatusUsage
	}
	pid, err1 := strconv.Atoi(p.Args[1])
	signum, err2 := strconv.Atoi(p.Args[2])
	if err1 != nil || err2 != nil {
		printError(p, "ping: arguments must be numeric\n")
		return 1
	}
	signum %= 32

	if _, ok := p.Interp.Jobs.ByPID(pid); !ok {
		printError(p, "ping: (%d) - No such process\n", pid)
		return 1
	}
	if err := unix.Kill(pid, unix.Signal(signum)); err != nil {
		printError(p, "ping: (%d) - %v\n", pid, err)
		return 1
	}
	fmt.Fprintf(p.Stdout, "Sent signal %d to process with pid %d\n", signum, pid)
	return 0
}

// Fg resumes a job in the foreground: announces it, continues it if
// stopped, removes it from the table, and waits. A further stop
// reinserts it under a fresh job id.
func Fg(p *interp.Proc) int {
	job, ok := findJobArg(p, "fg")
	if !ok {
		return 1
	}

	fmt.Fprintln(p.Stdout, job.Command)

	if job.Status == interp.JobStopped {
		if err := unix.Kill(job.PID, unix.SIGCONT); err != nil {
			if err == unix.ESRCH {
				printError(p, "fg: job has terminated\n")
				p.Interp.Jobs.Remove(job.ID)
				return 1
			}
			printError(p, "fg: %v\n", err)
			return 1
		}
	}

	p.Interp.Jobs.Remove(job.ID)
	return p.Interp.WaitForeground(job.PID, job.Command)
}

// Bg resumes a stopped job in the background.
func Bg(p *interp.Proc) int {
	job, ok := findJobArg(p, "bg")
	if !ok {
		return 1
	}
	if err := unix.Kill(job.PID, unix.SIGCONT); err != nil {
		if err == unix.ESRCH {
			printError(p, "bg: job has terminated\n")
			p.Interp.Jobs.Remove(job.ID)
			return 1
		}
		printError(p, "bg: %v\n", err)
		return 1
	}
	job.Status = interp.JobRunning
	fmt.Fprintf(p.Stdout, "[%d] %s &\n", job.ID, job.Command)
	return 0
}

// findJobArg parses the single job-id argument shared by fg and bg.
func findJobArg(p *interp.Proc, name string) (*interp.Job, bool) {
	if len(p.Args) != 2 {
		printError(p, "%s: usage: %s JOB_ID\n", name, name)
		return nil, false
	}
	id, err := strconv.Atoi(p.Args[1])
	if err != nil || id <= 0 {
		printError(p, "%s: %s: no such job\n", name, p.Args[1])
		return nil, false
	}
	job, ok := p.Interp.Jobs.Get(id)
	if !ok {
		printError(p, "%s: %s: no such job\n", name, p.Args[1])
		return nil, false
	}
	return job, true
}

func init() {
	interp.RegisterBuiltin("List background jobs", Jobs, "jobs", "activities")
	interp.RegisterBuiltin("Send signal to process", Kill, "kill")
	interp.RegisterBuiltin("Send signal to a tracked job", Ping, "ping")
	interp.RegisterBuiltin("Move job to foreground", Fg, "fg")
	interp.RegisterBuiltin("Resume job in background", Bg, "bg")
}
