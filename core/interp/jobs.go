package interp

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// JobStatus is the tracked state of a background or stopped job.
type JobStatus int

const (
	JobRunning JobStatus = iota
	JobStopped
)

func (s JobStatus) String() string {
	if s == JobStopped {
		return "Stopped"
	}
	return "Running"
}

// Job is one tracked entry: the supervisor (or stopped foreground)
// pid, the command as the user typed it, and its state.
type Job struct {
	ID      int
	PID     int
	Command string
	Status  JobStatus
}

var (
	ErrNoSuchJob     = errors.New("no such job")
	ErrJobTerminated = errors.New("job has terminated")
)

// JobTable registers background and stopped jobs. Job ids are assigned
// from a counter that is never reused within a session; iteration is
// in insertion order.
type JobTable struct {
	jobs   map[int]*Job
	order  []int
	nextID int
}

// NewJobTable returns an empty table with ids starting at 1.
func NewJobTable() *JobTable {
	return &JobTable{jobs: make(map[int]*Job), nextID: 1}
}

// Add inserts a job and returns it with a fresh id.
func (t *JobTable) Add(pid int, command string, status JobStatus) *Job {
	j := &Job{ID: t.nextID, PID: pid, Command: command, Status: status}
	t.nextID++
	t.jobs[j.ID] = j
	t.order = append(t.order, j.ID)
	return j
}

// Get finds a job by id.
func (t *JobTable) Get(id int) (*Job, bool) {
	j, ok := t.jobs[id]
	return j, ok
}

// ByPID finds a job by process id.
func (t *JobTable) ByPID(pid int) (*Job, bool) {
	for _, id := range t.order {
		if j := t.jobs[id]; j != nil && j.PID == pid {
			return j, true
		}
	}
	return nil, false
}

// Remove deletes a job by id.
func (t *JobTable) Remove(id int) {
	if _, ok := t.jobs[id]; !ok {
		return
	}
	delete(t.jobs, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Jobs returns the live entries in insertion order.
func (t *JobTable) Jobs() []*Job {
	out := make([]*Job, 0, len(t.order))
	for _, id := range t.order {
		if j := t.jobs[id]; j != nil {
			out = append(out, j)
		}
	}
	return out
}

// Len returns the number of tracked jobs.
func (t *JobTable) Len() int { return len(t.jobs) }

// Drain polls every tracked pid without blocking, announces state
// transitions on w, and removes entries that reached a terminal state.
// The main loop calls this just before each prompt so notifications
// never interrupt foreground output.
func (t *JobTable) Drain(w io.Writer) {
	for _, j := range t.Jobs() {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(j.PID, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		switch {
		case err != nil:
			// The pid is gone (reaped elsewhere or never ours).
			t.Remove(j.ID)
		case pid == 0:
			// No state change.
		case ws.Exited():
			if ws.ExitStatus() == 0 {
				fmt.Fprintf(w, "%s with pid %d exited normally\n", j.Command, j.PID)
			} else {
				fmt.Fprintf(w, "%s with pid %d exited abnormally\n", j.Command, j.PID)
			}
			t.Remove(j.ID)
		case ws.Signaled():
			fmt.Fprintf(w, "%s with pid %d exited abnormally\n", j.Command, j.PID)
			t.Remove(j.ID)
		case ws.Stopped():
			j.Status = JobStopped
			fmt.Fprintf(w, "[%d] Stopped %s\n", j.ID, j.Command)
		case ws.Continued():
			j.Status = JobRunning
			fmt.Fprintf(w, "[%d] Continued %s\n", j.ID, j.Command)
		}
	}
}
