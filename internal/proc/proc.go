// Package proc tracks the child processes the CLI spawns (backend
// server, Metro bundler, simulators) and tears them down cleanly when
// the run ends or the user interrupts.
package proc

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/onramp-dev/onramp/pkg/logger"
)

// termGrace is how long a child gets to exit after SIGTERM before it is
// killed outright.
const termGrace = 3 * time.Second

// Proc is a started child process. Wait is owned by the tracker, so
// callers observe exit through Done instead.
type Proc struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// Done is closed when the process exits.
func (p *Proc) Done() <-chan struct{} { return p.done }

// Err returns the wait error. Only valid after Done is closed.
func (p *Proc) Err() error { return p.waitErr }

// Alive reports whether the process is still running.
func (p *Proc) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Pid returns the process ID, or 0 if the process never started.
func (p *Proc) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Stop terminates the process: SIGTERM first, SIGKILL if it has not
// exited within the grace period. Errors are swallowed; the process may
// already be gone.
func (p *Proc) Stop() {
	if !p.Alive() {
		return
	}
	logger.Debug("proc: terminating", "pid", p.Pid())
	_ = p.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-p.done:
	case <-time.After(termGrace):
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

// Tracker keeps every spawned child so Shutdown can clean up all of them
// regardless of how the run ends.
type Tracker struct {
	mu    sync.Mutex
	procs []*Proc
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Start launches cmd and begins tracking it. A goroutine reaps the
// process as soon as it exits, so no zombies linger between restarts.
func (t *Tracker) Start(cmd *exec.Cmd) (*Proc, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &Proc{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	t.mu.Lock()
	t.procs = append(t.procs, p)
	t.mu.Unlock()

	logger.Debug("proc: started", "pid", p.Pid(), "cmd", cmd.Path)
	return p, nil
}

// Shutdown stops every tracked process that is still alive. Safe to call
// more than once.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	procs := t.procs
	t.procs = nil
	t.mu.Unlock()

	for _, p := range procs {
		p.Stop()
	}
}
