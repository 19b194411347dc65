package interp

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/aisha-shell/aish/core/token"
	"golang.org/x/sys/unix"
)

// Conventional exit statuses.
const (
	StatusSuccess     = 0
	StatusFailure     = 1
	StatusUsage       = 2
	StatusNotFound    = 127
	StatusSignalBase  = 128
	StatusStopped     = 148
)

func (in *Interp) execList(list *List) int {
	status := in.LastStatus
	for _, seg := range list.Segments {
		if seg.Background {
			status = in.execBackground(seg)
		} else {
			status = in.execAndOr(seg.AndOr)
		}
		in.LastStatus = status
		if in.ExitRequested {
			break
		}
	}
	return status
}

// execAndOr evaluates pipelines left to right with short-circuiting:
// the right side of && runs only on success, of || only on failure.
func (in *Interp) execAndOr(a *AndOr) int {
	status := in.execPipeline(a.Items[0])
	in.LastStatus = status
	for i, op := range a.Ops {
		if in.ExitRequested {
			break
		}
		if (op == token.And && status != 0) || (op == token.Or && status == 0) {
			continue
		}
		status = in.execPipeline(a.Items[i+1])
		in.LastStatus = status
	}
	return status
}

func (in *Interp) execPipeline(p *Pipeline) int {
	if len(p.Cmds) == 1 {
		return in.execSimple(p.Cmds[0], p.Text)
	}
	return in.execMulti(p)
}

// execSimple runs a pipeline of one command: a variable assignment, a
// subshell group, a builtin with redirections installed, or a spawned
// external waited on in the foreground.
func (in *Interp) execSimple(cmd *Command, text string) int {
	if cmd.Subshell != "" {
		return in.execSubshell(cmd.Subshell)
	}
	if len(cmd.Args) == 0 {
		return StatusFailure
	}

	if name, value, ok := splitAssignment(cmd.Args); ok {
		if err := in.Vars.Set(name, value, 0); err != nil {
			fmt.Fprintf(in.Stderr, "aish: %v\n", err)
			return StatusFailure
		}
		return StatusSuccess
	}

	if fn, ok := LookupBuiltin(cmd.Args[0]); ok {
		return in.runBuiltin(fn, cmd)
	}
	return in.execExternal(cmd, text)
}

// splitAssignment recognizes a lone NAME=value word.
func splitAssignment(args []string) (name, value string, ok bool) {
	if len(args) != 1 {
		return "", "", false
	}
	idx := strings.IndexByte(args[0], '=')
	if idx <= 0 {
		return "", "", false
	}
	name, value = args[0][:idx], args[0][idx+1:]
	if !ValidVarName(name) {
		return "", "", false
	}
	return name, value, true
}

// runBuiltin invokes a builtin synchronously with its redirections
// resolved onto the Proc's streams. Every opened descriptor is closed
// before returning.
func (in *Interp) runBuiltin(fn BuiltinFunc, cmd *Command) int {
	rin, rout, err := in.openRedirects(cmd)
	if err != nil {
		return StatusFailure
	}
	p := &Proc{
		Interp: in,
		Args:   cmd.Args,
		Stdin:  in.Stdin,
		Stdout: in.Stdout,
		Stderr: in.Stderr,
	}
	if rin != nil {
		defer rin.Close()
		p.Stdin = rin
	}
	if rout != nil {
		defer rout.Close()
		p.Stdout = rout
	}
	return fn(p)
}

// execExternal forks an external program, wires its redirections, and
// waits on it as the foreground job.
func (in *Interp) execExternal(cmd *Command, text string) int {
	path, err := exec.LookPath(cmd.Args[0])
	if err != nil {
		fmt.Fprintf(in.Stderr, "%s: command not found\n", cmd.Args[0])
		return StatusNotFound
	}

	stdin := fileOf(in.Stdin, os.Stdin)
	stdout := fileOf(in.Stdout, os.Stdout)
	var opened []*os.File
	if cmd.InputFile != "" {
		f, err := os.Open(cmd.InputFile)
		if err != nil {
			fmt.Fprintln(in.Stderr, "No such file or directory")
			return StatusFailure
		}
		stdin = f
		opened = append(opened, f)
	}
	if cmd.OutputFile != "" {
		f, err := os.OpenFile(cmd.OutputFile, outputFlags(cmd.AppendOutput), 0644)
		if err != nil {
			closeAll(opened)
			fmt.Fprintln(in.Stderr, "Unable to create file for writing")
			return StatusFailure
		}
		stdout = f
		opened = append(opened, f)
	}

	c := exec.Cmd{
		Path:   path,
		Args:   cmd.Args,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: fileOf(in.Stderr, os.Stderr),
	}
	if err := c.Start(); err != nil {
		closeAll(opened)
		fmt.Fprintf(in.Stderr, "fork: %v\n", err)
		return StatusFailure
	}
	closeAll(opened)

	if text == "" {
		text = strings.Join(cmd.Args, " ")
	}
	return in.WaitForeground(c.Process.Pid, text)
}

// WaitForeground publishes pid as the foreground job and blocks until
// it exits, dies, or stops. A stopped child is registered in the job
// table and yields the conventional 148.
func (in *Interp) WaitForeground(pid int, cmdline string) int {
	SetForeground(pid)
	defer ClearForeground()

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || wpid != pid {
			fmt.Fprintf(in.Stderr, "wait: %v\n", err)
			return StatusFailure
		}
		break
	}

	switch {
	case ws.Stopped():
		j := in.Jobs.Add(pid, cmdline, JobStopped)
		fmt.Fprintf(in.Stdout, "[%d] Stopped %s\n", j.ID, cmdline)
		in.Log.Job("stopped", j.ID, pid, cmdline)
		return StatusStopped
	case ws.Signaled():
		return StatusSignalBase + int(ws.Signal())
	default:
		return ws.ExitStatus()
	}
}

// execSubshell runs a parenthesized group in a re-exec'd child and
// waits for it in the foreground.
func (in *Interp) execSubshell(text string) int {
	c := exec.Cmd{
		Path:   in.SelfExe,
		Args:   []string{in.ShellName, "-c", text},
		Stdin:  fileOf(in.Stdin, os.Stdin),
		Stdout: fileOf(in.Stdout, os.Stdout),
		Stderr: fileOf(in.Stderr, os.Stderr),
	}
	if err := c.Start(); err != nil {
		fmt.Fprintf(in.Stderr, "fork: %v\n", err)
		return StatusFailure
	}
	return in.WaitForeground(c.Process.Pid, "("+text+")")
}

// execBackground detaches a segment under a supervisor child: the
// shell re-exec'd with -c, stdin from the null device, its own process
// group so terminal signals never reach it. The parent registers the
// job and returns immediately.
func (in *Interp) execBackground(seg *Segment) int {
	devnull, err := os.Open(os.DevNull)
	if err != nil {
		fmt.Fprintf(in.Stderr, "aish: %v\n", err)
		return StatusFailure
	}
	defer devnull.Close()

	c := exec.Cmd{
		Path:        in.SelfExe,
		Args:        []string{in.ShellName, "-c", seg.Text},
		Stdin:       devnull,
		Stdout:      fileOf(in.Stdout, os.Stdout),
		Stderr:      fileOf(in.Stderr, os.Stderr),
		SysProcAttr: &syscall.SysProcAttr{Setpgid: true},
	}
	if err := c.Start(); err != nil {
		fmt.Fprintf(in.Stderr, "fork: %v\n", err)
		return StatusFailure
	}

	pid := c.Process.Pid
	j := in.Jobs.Add(pid, seg.Text, JobRunning)
	in.lastBackgroundPID = pid
	fmt.Fprintf(in.Stdout, "[%d] %d\n", j.ID, pid)
	in.Log.Job("start", j.ID, pid, seg.Text)
	return StatusSuccess
}

// pipeStage is the bookkeeping for one started pipeline stage.
type pipeStage struct {
	pid  int      // external stage: child pid
	done chan int // builtin stage: status arrives here
}

type pipePair struct{ r, w *os.File }

// execMulti runs a pipeline of two or more commands. All pipes are
// created before any stage starts; every stage is started before the
// parent waits; the parent holds no pipe descriptors once the last
// stage is running.
func (in *Interp) execMulti(p *Pipeline) int {
	n := len(p.Cmds)

	pipes := make([]pipePair, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			for j := 0; j < i; j++ {
				pipes[j].r.Close()
				pipes[j].w.Close()
			}
			fmt.Fprintf(in.Stderr, "pipe: %v\n", err)
			return StatusFailure
		}
		pipes[i] = pipePair{r, w}
	}

	// inProcess marks pipe files owned by builtin goroutines; the
	// parent must not close those.
	inProcess := make(map[*os.File]bool)
	stages := make([]pipeStage, n)
	var toClose []*os.File

	for i, cmd := range p.Cmds {
		var stdin io.Reader = in.Stdin
		var stdout io.Writer = in.Stdout
		var opened []*os.File

		if i > 0 {
			stdin = pipes[i-1].r
		} else if cmd.InputFile != "" {
			f, err := os.Open(cmd.InputFile)
			if err != nil {
				fmt.Fprintln(in.Stderr, "No such file or directory")
				in.abortPipeline(pipes, toClose, stages[:i])
				return StatusFailure
			}
			stdin = f
			opened = append(opened, f)
		}
		if i < n-1 {
			stdout = pipes[i].w
		} else if cmd.OutputFile != "" {
			f, err := os.OpenFile(cmd.OutputFile, outputFlags(cmd.AppendOutput), 0644)
			if err != nil {
				fmt.Fprintln(in.Stderr, "Unable to create file for writing")
				closeAll(opened)
				in.abortPipeline(pipes, toClose, stages[:i])
				return StatusFailure
			}
			stdout = f
			opened = append(opened, f)
		}

		if fn, ok := in.lookupStage(cmd); ok {
			// Builtin stage: runs in-process; the goroutine owns its
			// pipe ends and closes them when the body returns.
			stages[i].done = make(chan int, 1)
			var closeIn, closeOut *os.File
			if i > 0 {
				closeIn = pipes[i-1].r
				inProcess[closeIn] = true
			}
			if i < n-1 {
				closeOut = pipes[i].w
				inProcess[closeOut] = true
			}
			files := opened
			proc := &Proc{
				Interp:     in,
				Args:       cmd.Args,
				Stdin:      stdin,
				Stdout:     stdout,
				Stderr:     in.Stderr,
				InPipeline: true,
			}
			done := stages[i].done
			go func() {
				status := fn(proc)
				if closeIn != nil {
					closeIn.Close()
				}
				if closeOut != nil {
					closeOut.Close()
				}
				closeAll(files)
				done <- status
			}()
			continue
		}

		argv, path, ok := in.stageArgv(cmd)
		if !ok {
			// Command not found behaves like a failed stage; its pipe
			// ends still have to close so neighbors see EOF.
			fmt.Fprintf(in.Stderr, "%s: command not found\n", cmd.Args[0])
			stages[i].done = make(chan int, 1)
			stages[i].done <- StatusNotFound
			closeAll(opened)
			continue
		}

		c := exec.Cmd{
			Path:   path,
			Args:   argv,
			Stdin:  fileOf(stdin, os.Stdin),
			Stdout: fileOf(stdout, os.Stdout),
			Stderr: fileOf(in.Stderr, os.Stderr),
		}
		if err := c.Start(); err != nil {
			fmt.Fprintf(in.Stderr, "fork: %v\n", err)
			stages[i].done = make(chan int, 1)
			stages[i].done <- StatusFailure
			closeAll(opened)
			continue
		}
		stages[i].pid = c.Process.Pid
		toClose = append(toClose, opened...)
	}

	// Every stage is running; release the parent's pipe copies.
	for _, pp := range pipes {
		if !inProcess[pp.r] {
			pp.r.Close()
		}
		if !inProcess[pp.w] {
			pp.w.Close()
		}
	}
	closeAll(toClose)

	// The last stage is the pipeline's foreground representative.
	lastPID := stages[n-1].pid
	if lastPID != 0 {
		SetForeground(lastPID)
		defer ClearForeground()
	}

	statuses := make([]int, n)
	lastSignal := -1
	stoppedLast := false
	for i, st := range stages {
		if st.done != nil {
			statuses[i] = <-st.done
			continue
		}
		var ws unix.WaitStatus
		flags := 0
		if i == n-1 {
			flags = unix.WUNTRACED
		}
		for {
			_, err := unix.Wait4(st.pid, &ws, flags, nil)
			if err == unix.EINTR {
				continue
			}
			break
		}
		switch {
		case ws.Stopped():
			stoppedLast = i == n-1
			statuses[i] = StatusStopped
		case ws.Signaled():
			lastSignal = int(ws.Signal())
			statuses[i] = StatusSignalBase + lastSignal
		default:
			statuses[i] = ws.ExitStatus()
		}
	}

	if stoppedLast {
		j := in.Jobs.Add(lastPID, p.Text, JobStopped)
		fmt.Fprintf(in.Stdout, "[%d] Stopped %s\n", j.ID, p.Text)
		return StatusStopped
	}
	if lastSignal >= 0 {
		return StatusSignalBase + lastSignal
	}
	// An early stage's failure does not decide the pipeline; the final
	// stage's status does.
	return statuses[n-1]
}

// lookupStage resolves a pipeline stage to a builtin body, treating
// subshell groups as external re-execs.
func (in *Interp) lookupStage(cmd *Command) (BuiltinFunc, bool) {
	if cmd.Subshell != "" || len(cmd.Args) == 0 {
		return nil, false
	}
	return LookupBuiltin(cmd.Args[0])
}

// stageArgv resolves the argv and executable path for an external
// pipeline stage.
func (in *Interp) stageArgv(cmd *Command) (argv []string, path string, ok bool) {
	if cmd.Subshell != "" {
		return []string{in.ShellName, "-c", cmd.Subshell}, in.SelfExe, true
	}
	path, err := exec.LookPath(cmd.Args[0])
	if err != nil {
		return nil, "", false
	}
	return cmd.Args, path, true
}

// abortPipeline tears down a partially started pipeline: closes every
// pipe end and reaps anything already running.
func (in *Interp) abortPipeline(pipes []pipePair, opened []*os.File, started []pipeStage) {
	for _, pp := range pipes {
		pp.r.Close()
		pp.w.Close()
	}
	closeAll(opened)
	for _, st := range started {
		if st.pid != 0 {
			_ = unix.Kill(st.pid, unix.SIGTERM)
			var ws unix.WaitStatus
			_, _ = unix.Wait4(st.pid, &ws, 0, nil)
		}
		if st.done != nil {
			<-st.done
		}
	}
}

func outputFlags(appendOutput bool) int {
	flags := os.O_WRONLY | os.O_CREATE
	if appendOutput {
		return flags | os.O_APPEND
	}
	return flags | os.O_TRUNC
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func fileOf(v interface{}, fallback *os.File) *os.File {
	if f, ok := v.(*os.File); ok {
		return f
	}
	return fallback
}
