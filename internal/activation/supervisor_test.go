package activation

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func waitForState(t *testing.T, sup *Supervisor, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sup.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %v, want %v", sup.State(), want)
}

func TestSupervisorLifecycle(t *testing.T) {
	sys := newFakeSystem()
	sup := NewSupervisor("renderer", sys, sys, quiet)

	if sup.State() != StateStopped {
		t.Fatalf("initial State() = %v, want stopped", sup.State())
	}
	if _, ok := sup.Pid(); ok {
		t.Fatal("initial Pid() reports a process")
	}

	pid, err := sup.EnsureStarted(context.Background(), Invocation{ContentPath: "/w/1"})
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if sup.State() != StateRunning {
		t.Errorf("State() = %v, want running", sup.State())
	}

	again, err := sup.EnsureStarted(context.Background(), Invocation{ContentPath: "/w/1"})
	if err != nil || again != pid {
		t.Errorf("second EnsureStarted = %d, %v; want %d without relaunch", again, err, pid)
	}
	if len(sys.started) != 1 {
		t.Errorf("launched %d times, want 1", len(sys.started))
	}

	if err := sup.EnsureStopped(context.Background()); err != nil {
		t.Fatalf("EnsureStopped: %v", err)
	}
	if sup.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", sup.State())
	}
	if sys.liveCount() != 0 {
		t.Errorf("live renderers = %d, want 0", sys.liveCount())
	}

	if err := sup.EnsureStopped(context.Background()); err != nil {
		t.Errorf("EnsureStopped when already stopped: %v", err)
	}
}

func TestSupervisorNoticesExit(t *testing.T) {
	sys := newFakeSystem()
	sup := NewSupervisor("renderer", sys, sys, quiet)

	pid, err := sup.EnsureStarted(context.Background(), Invocation{ContentPath: "/w/1"})
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}

	sys.crash(pid)
	waitForState(t, sup, StateStopped)
	if _, ok := sup.Pid(); ok {
		t.Error("Pid() still reports the exited renderer")
	}
}

func TestSupervisorOldExitDoesNotStopNewRenderer(t *testing.T) {
	sys := newFakeSystem()
	sup := NewSupervisor("renderer", sys, sys, quiet)

	if _, err := sup.EnsureStarted(context.Background(), Invocation{ContentPath: "/w/1"}); err != nil {
		t.Fatal(err)
	}
	if err := sup.EnsureStopped(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := sup.EnsureStarted(context.Background(), Invocation{ContentPath: "/w/2"}); err != nil {
		t.Fatal(err)
	}

	// let the reaper of the first renderer run
	time.Sleep(20 * time.Millisecond)
	if sup.State() != StateRunning {
		t.Errorf("State() = %v, want running", sup.State())
	}
}

func TestSupervisorBoundedWaitForStubbornRenderer(t *testing.T) {
	sys := newFakeSystem()
	sys.stubborn = true
	if _, err := sys.Start(Invocation{ContentPath: "/old"}); err != nil {
		t.Fatal(err)
	}

	sup := NewSupervisor("renderer", sys, sys, quiet)
	sup.StopTimeout = 50 * time.Millisecond
	sup.PollInterval = 5 * time.Millisecond

	start := time.Now()
	if err := sup.EnsureStopped(context.Background()); err != nil {
		t.Fatalf("EnsureStopped: %v", err)
	}
	if elapsed := time.Since(start); elapsed < sup.StopTimeout {
		t.Errorf("EnsureStopped returned after %v, want at least %v", elapsed, sup.StopTimeout)
	}
	if sup.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", sup.State())
	}
}

func TestSupervisorLaunchFailure(t *testing.T) {
	sys := newFakeSystem()
	sys.startErr = errors.New("boom")
	sup := NewSupervisor("renderer", sys, sys, quiet)

	if _, err := sup.EnsureStarted(context.Background(), Invocation{}); !errors.Is(err, sys.startErr) {
		t.Fatalf("EnsureStarted() error = %v, want boom", err)
	}
	if sup.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", sup.State())
	}
}

func TestDetachedLauncher(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	launcher := &DetachedLauncher{DiscardLogs: true, Logger: quiet}
	// sh rejects the renderer flags and exits, which is all this test needs
	proc, err := launcher.Start(Invocation{Bin: sh, ContentPath: "/nonexistent", Target: "eDP-1", Scaling: "fill"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if proc.Pid() <= 0 {
		t.Errorf("Pid() = %d", proc.Pid())
	}

	done := make(chan struct{})
	go func() {
		proc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("launched process did not exit")
	}

	if _, err := launcher.Start(Invocation{Bin: "/nonexistent/linux-wallpaperengine"}); err == nil {
		t.Error("Start with a missing binary succeeded")
	}
}

func TestPidofTableNoMatch(t *testing.T) {
	if _, err := exec.LookPath("pidof"); err != nil {
		t.Skip("pidof not available")
	}

	pids, err := PidofTable{}.Pids(context.Background(), "no-such-renderer-process-name")
	if err != nil {
		t.Fatalf("Pids: %v", err)
	}
	if len(pids) != 0 {
		t.Errorf("Pids() = %v, want none", pids)
	}
}
