// Package supervisor implements the per-service restart loop (Supervisor)
// and the per-stream log forwarder (Log Writer) described in §4.3.
package supervisor

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"rkinit/internal/config"
	"rkinit/internal/console"
	"rkinit/internal/launcher"
	"rkinit/internal/state"
	"rkinit/pkg/metrics"
	"rkinit/pkg/rklog"
)

// Spawner abstracts process creation so the restart loop is testable
// without real executables. It mirrors the single Cmd surface Supervisor
// needs: stdout/stderr pipes, Start, and Wait.
type Spawner interface {
	Spawn(path string) (Child, error)
}

// Child is a running (or about-to-run) child process with its two captured
// output streams.
type Child interface {
	StdoutPipe() (io.ReadCloser, error)
	StderrPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) StdoutPipe() (io.ReadCloser, error) { return c.cmd.StdoutPipe() }
func (c *execChild) StderrPipe() (io.ReadCloser, error) { return c.cmd.StderrPipe() }
func (c *execChild) Start() error                       { return c.cmd.Start() }
func (c *execChild) Wait() error                        { return c.cmd.Wait() }

type execSpawner struct{}

func (execSpawner) Spawn(path string) (Child, error) {
	cmd := exec.Command(path)
	// stdin is deliberately left unconnected; only stdout/stderr are piped.
	return &execChild{cmd: cmd}, nil
}

// System is the production Spawner, backed by os/exec.
var System Spawner = execSpawner{}

// Supervisor owns the unbounded spawn/wait/sleep loop for one service. It
// never has two live children at once (I3) and sleeps RestartInterval
// between any two consecutive spawn attempts (I4).
type Supervisor struct {
	Entry   launcher.Entry
	Sink    *console.Sink
	Spawner Spawner
	State   *state.Store // nil-safe: bookkeeping is best-effort
	LogDir  string
}

// New builds a Supervisor bound to entry, using the production Spawner.
func New(entry launcher.Entry, sink *console.Sink, st *state.Store, logDir string) *Supervisor {
	return &Supervisor{
		Entry:   entry,
		Sink:    sink,
		Spawner: System,
		State:   st,
		LogDir:  logDir,
	}
}

// Run is the unbounded restart loop. It never returns; callers run it on its
// own goroutine.
func (s *Supervisor) Run() {
	for {
		s.attempt()
		time.Sleep(config.RestartInterval)
	}
}

func (s *Supervisor) attempt() {
	defer func() {
		if r := recover(); r != nil {
			rklog.WithService(s.Entry.Name).Error().Interface("panic", r).Msg("supervisor attempt panicked")
		}
	}()

	child, err := s.Spawner.Spawn(s.Entry.Path)
	if err != nil {
		s.Sink.Error("starting %s: %v", s.Entry.Name, err)
		metrics.SpawnsTotal.WithLabelValues(s.Entry.Name, "error").Inc()
		return
	}

	stdout, err := child.StdoutPipe()
	if err != nil {
		s.Sink.Error("starting %s: %v", s.Entry.Name, err)
		metrics.SpawnsTotal.WithLabelValues(s.Entry.Name, "error").Inc()
		return
	}
	stderr, err := child.StderrPipe()
	if err != nil {
		s.Sink.Error("starting %s: %v", s.Entry.Name, err)
		metrics.SpawnsTotal.WithLabelValues(s.Entry.Name, "error").Inc()
		return
	}

	if err := child.Start(); err != nil {
		s.Sink.Error("starting %s: %v", s.Entry.Name, err)
		metrics.SpawnsTotal.WithLabelValues(s.Entry.Name, "error").Inc()
		return
	}

	s.Sink.OK("starting %s", s.Entry.Name)
	metrics.SpawnsTotal.WithLabelValues(s.Entry.Name, "ok").Inc()
	uptime := metrics.NewTimer()
	if s.State != nil {
		if err := s.State.RecordSpawn(s.Entry.Name); err != nil {
			rklog.WithService(s.Entry.Name).Err(err).Msg("can't record spawn")
		}
	}

	go newLogWriter(s.Sink, s.Entry.Name, config.StdoutLogExt, s.LogDir).run(stdout)
	go newLogWriter(s.Sink, s.Entry.Name, config.StderrLogExt, s.LogDir).run(stderr)

	waitErr := child.Wait()
	metrics.ExitsTotal.WithLabelValues(s.Entry.Name).Inc()
	uptime.ObserveDurationVec(metrics.ServiceUptimeSeconds, s.Entry.Name)

	exitDesc := describeWait(waitErr)
	if isWaitFailure(waitErr) {
		s.Sink.Error("can't wait for %s to exit: %v", s.Entry.Name, waitErr)
	} else {
		s.Sink.Info("%s exited with %s", s.Entry.Name, exitDesc)
	}

	if s.State != nil {
		if err := s.State.RecordExit(s.Entry.Name, exitDesc); err != nil {
			rklog.WithService(s.Entry.Name).Err(err).Msg("can't record exit")
		}
	}
}

// isWaitFailure reports whether err represents a failure of wait(2) itself
// (I/O error, process already reaped, etc.) as opposed to a normal exit
// status, which *exec.ExitError represents.
func isWaitFailure(err error) bool {
	if err == nil {
		return false
	}
	_, isExitError := err.(*exec.ExitError)
	return !isExitError
}

// describeWait renders the child's exit status for the console. For a
// normal exit (nil error or *exec.ExitError) this is the OS's status
// description; for a true wait failure it is the error text.
func describeWait(err error) string {
	if err == nil {
		return "exit status 0"
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.String()
	}
	return fmt.Sprintf("%v", err)
}
