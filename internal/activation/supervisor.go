package activation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"
)

// State of the supervised renderer.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

const defaultPollInterval = 100 * time.Millisecond

// Supervisor owns the one renderer process of this application.
//
// Stopping is by process name, so it also catches renderers started by an
// earlier run or by the startup script. Operations are serialized; State and
// Pid may be called concurrently with them.
type Supervisor struct {
	ProcessName string
	// StopTimeout bounds the wait for old renderers to exit after SIGTERM.
	// Zero skips the wait.
	StopTimeout  time.Duration
	PollInterval time.Duration

	procs    ProcessTable
	launcher Launcher
	logger   *log.Logger

	opMu sync.Mutex

	mu         sync.Mutex
	state      State
	current    Process
	generation int
}

func NewSupervisor(processName string, procs ProcessTable, launcher Launcher, logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		ProcessName:  processName,
		PollInterval: defaultPollInterval,
		procs:        procs,
		launcher:     launcher,
		logger:       logger,
	}
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pid of the renderer this supervisor launched, if it is still running.
func (s *Supervisor) Pid() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0, false
	}
	return s.current.Pid(), true
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// EnsureStopped asks every renderer to terminate. It returns once the
// requests are sent and either no renderer is left or StopTimeout elapsed.
func (s *Supervisor) EnsureStopped(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	previous := s.state
	s.state = StateStopping
	var ownPid int
	if s.current != nil {
		ownPid = s.current.Pid()
	}
	s.mu.Unlock()

	pids, err := s.procs.Pids(ctx, s.ProcessName)
	if err != nil {
		s.setState(previous)
		return err
	}
	if ownPid != 0 && !slices.Contains(pids, ownPid) {
		pids = append(pids, ownPid)
	}

	if len(pids) == 0 {
		s.logger.Printf("No running processes found for %s", s.ProcessName)
	} else {
		s.logger.Printf("%s is already running, killing old process(es)...", s.ProcessName)
	}

	var errs []error
	for _, pid := range pids {
		if err := s.procs.Terminate(pid); err != nil {
			s.logger.Printf("Error killing process with PID %d: %v", pid, err)
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
			continue
		}
		s.logger.Printf("Successfully sent SIGTERM to process with PID %d", pid)
	}
	if len(errs) > 0 {
		s.setState(previous)
		return fmt.Errorf("failed to kill one or more processes: %w", errors.Join(errs...))
	}

	if len(pids) > 0 {
		s.waitForExit(ctx)
	}

	s.mu.Lock()
	s.state = StateStopped
	s.current = nil
	// the reaper of the old process must not touch the next one
	s.generation++
	s.mu.Unlock()

	return nil
}

// waitForExit polls until no renderer is listed or StopTimeout passes. A
// renderer that ignores SIGTERM is logged and left behind.
func (s *Supervisor) waitForExit(ctx context.Context) {
	if s.StopTimeout <= 0 {
		return
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := time.NewTimer(s.StopTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pids, err := s.procs.Pids(ctx, s.ProcessName)
		if err == nil && len(pids) == 0 {
			s.logger.Printf("All running processes for %s have exited", s.ProcessName)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			s.logger.Printf("Warning: %s still running after %s, launching anyway", s.ProcessName, s.StopTimeout)
			return
		case <-ticker.C:
		}
	}
}

// EnsureStarted launches inv unless this supervisor already runs a renderer.
// A failed launch leaves the supervisor stopped.
func (s *Supervisor) EnsureStarted(ctx context.Context, inv Invocation) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	if s.state == StateRunning && s.current != nil {
		pid := s.current.Pid()
		s.mu.Unlock()
		return pid, nil
	}
	s.state = StateStarting
	s.mu.Unlock()

	s.logger.Printf("Executing command: %s", inv)
	proc, err := s.launcher.Start(inv)
	if err != nil {
		s.setState(StateStopped)
		s.logger.Printf("Error starting wallpaper command '%s': %v", inv, err)
		return 0, err
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.current = proc
	s.state = StateRunning
	s.mu.Unlock()

	s.logger.Printf("Successfully started detached wallpaper command (PID: %d)", proc.Pid())
	go s.reap(proc, generation)

	return proc.Pid(), nil
}

func (s *Supervisor) reap(proc Process, generation int) {
	err := proc.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.logger.Printf("Renderer (PID: %d) exited: %v", proc.Pid(), err)
	s.current = nil
	s.state = StateStopped
}
