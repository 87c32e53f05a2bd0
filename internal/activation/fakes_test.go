package activation

import (
	"context"
	"fmt"
	"io"
	"log"
	"slices"
	"sync"
)

var quiet = log.New(io.Discard, "", 0)

// fakeSystem is a process table and launcher sharing one set of live PIDs.
type fakeSystem struct {
	mu       sync.Mutex
	live     map[int]*fakeProcess
	nextPid  int
	events   []string
	started  []Invocation
	startErr error
	// stubborn processes ignore SIGTERM
	stubborn bool
	pidsErr  error
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{live: map[int]*fakeProcess{}, nextPid: 100}
}

func (f *fakeSystem) Pids(ctx context.Context, processName string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pidsErr != nil {
		return nil, f.pidsErr
	}
	var pids []int
	for pid := range f.live {
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	return pids, nil
}

func (f *fakeSystem) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("terminate %d", pid))
	if f.stubborn {
		return nil
	}
	if proc, ok := f.live[pid]; ok {
		delete(f.live, pid)
		proc.exit()
	}
	return nil
}

func (f *fakeSystem) Start(inv Invocation) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.nextPid++
	proc := &fakeProcess{pid: f.nextPid, done: make(chan struct{})}
	f.live[proc.pid] = proc
	f.started = append(f.started, inv)
	f.events = append(f.events, fmt.Sprintf("start %d %s", proc.pid, inv.ContentPath))
	return proc, nil
}

// crash makes pid exit on its own.
func (f *fakeSystem) crash(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if proc, ok := f.live[pid]; ok {
		delete(f.live, pid)
		proc.exit()
	}
}

func (f *fakeSystem) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeSystem) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.events)
}

type fakeProcess struct {
	pid  int
	once sync.Once
	done chan struct{}
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) exit() {
	p.once.Do(func() { close(p.done) })
}
