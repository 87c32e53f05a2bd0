package activation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ProcessTable finds and signals processes by name.
type ProcessTable interface {
	Pids(ctx context.Context, processName string) ([]int, error)
	Terminate(pid int) error
}

// Launcher starts a renderer that outlives the caller.
type Launcher interface {
	Start(inv Invocation) (Process, error)
}

// Process is a handle to a launched renderer.
type Process interface {
	Pid() int
	// Wait blocks until the process exits.
	Wait() error
}

const pidofTimeout = 5 * time.Second

// PidofTable looks processes up with pidof(8) and stops them with SIGTERM.
type PidofTable struct{}

// Pids returns the PIDs of running processes with the given name. No matching
// process is not an error.
func (PidofTable) Pids(ctx context.Context, processName string) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, pidofTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "pidof", processName).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && exitError.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check running processes: %w", err)
	}

	var pids []int
	for _, field := range strings.Fields(string(output)) {
		pid, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("error converting PID '%s' to int: %w", field, err)
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// Terminate sends SIGTERM. A process that is already gone is not an error.
func (PidofTable) Terminate(pid int) error {
	err := syscall.Kill(pid, syscall.SIGTERM)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// DetachedLauncher starts the renderer in its own session so that it keeps
// running after this process exits.
type DetachedLauncher struct {
	// DiscardLogs pipes the renderer's stdio into /dev/null instead of ours.
	DiscardLogs bool
	Logger      *log.Logger
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int    { return p.cmd.Process.Pid }
func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (l *DetachedLauncher) Start(inv Invocation) (Process, error) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}

	cmd := exec.Command(inv.Bin, inv.Args()...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if l.DiscardLogs {
		devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			logger.Printf("Warning: Could not open /dev/null for detaching process I/O: %v", err)
		} else {
			cmd.Stdin = devNull
			cmd.Stdout = devNull
			cmd.Stderr = devNull
			// the child holds its own copy after Start
			defer devNull.Close()
		}
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error starting detached process: %w", err)
	}
	logger.Printf("Detached process started with PID: %d", cmd.Process.Pid)
	return &execProcess{cmd: cmd}, nil
}
