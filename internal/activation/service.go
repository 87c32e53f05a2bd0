// Package activation applies a wallpaper: it replaces the running renderer
// and persists a startup script that re-applies the choice on next login.
package activation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/6gh/wallpaper-select/internal/catalog"
)

// ErrInvalidSelection is returned before any side effect when the record's
// directory is gone or no target screen was given.
var ErrInvalidSelection = errors.New("invalid wallpaper selection")

// Step names the part of an activation that failed.
type Step string

const (
	StepTerminate Step = "terminate"
	StepLaunch    Step = "launch"
	StepPersist   Step = "persist"
	StepChmod     Step = "chmod"
)

// Error is a failed activation. The requested wallpaper may not be active.
type Error struct {
	Step Step
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("activation of %s failed at %s: %v", e.Path, e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	Bin         string
	ProcessName string
	Scaling     string
	AssetsDir   string
	ScriptPath  string
}

// ActivationState is the last successful activation.
type ActivationState struct {
	Record     catalog.Record
	Target     string
	ScriptPath string
	Pid        int
}

// Service is the single owner of the current wallpaper. It is not meant for
// concurrent Activate calls from several callers; calls are serialized.
type Service struct {
	opts       Options
	supervisor *Supervisor
	logger     *log.Logger

	mu     sync.Mutex
	state  ActivationState
	active bool
}

func NewService(opts Options, supervisor *Supervisor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Scaling == "" {
		opts.Scaling = "fill"
	}
	return &Service{opts: opts, supervisor: supervisor, logger: logger}
}

// Invocation builds the renderer command for record on target.
func (s *Service) Invocation(record catalog.Record, target string) Invocation {
	return Invocation{
		Bin:         s.opts.Bin,
		ContentPath: record.SourcePath,
		Target:      target,
		Scaling:     s.opts.Scaling,
		AssetsDir:   s.opts.AssetsDir,
	}
}

// Activate stops any running renderer, launches record on target, and writes
// the startup script. Invalid input fails with ErrInvalidSelection before
// anything is touched; later failures are returned as *Error.
func (s *Service) Activate(ctx context.Context, record catalog.Record, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate(record, target); err != nil {
		return err
	}

	inv := s.Invocation(record, target)
	s.logger.Printf("Applying wallpaper %s (%s) on %s", record.ID, record.SourcePath, target)

	if err := s.supervisor.EnsureStopped(ctx); err != nil {
		return &Error{Step: StepTerminate, Path: record.SourcePath, Err: err}
	}

	pid, err := s.supervisor.EnsureStarted(ctx, inv)
	if err != nil {
		return &Error{Step: StepLaunch, Path: record.SourcePath, Err: err}
	}

	if err := writeScript(s.opts.ScriptPath, StartupScript(s.opts.ProcessName, inv)); err != nil {
		return &Error{Step: StepPersist, Path: record.SourcePath, Err: err}
	}
	if err := os.Chmod(s.opts.ScriptPath, 0755); err != nil {
		return &Error{Step: StepChmod, Path: record.SourcePath, Err: err}
	}
	s.logger.Printf("Startup script written to %s", s.opts.ScriptPath)

	s.state = ActivationState{Record: record, Target: target, ScriptPath: s.opts.ScriptPath, Pid: pid}
	s.active = true
	return nil
}

// Current returns the last successful activation, if any.
func (s *Service) Current() (ActivationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.active
}

func validate(record catalog.Record, target string) error {
	if record.SourcePath == "" {
		return fmt.Errorf("%w: record has no source path", ErrInvalidSelection)
	}
	info, err := os.Stat(record.SourcePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidSelection, record.SourcePath)
	}
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w: no target screen", ErrInvalidSelection)
	}
	return nil
}
