package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/6gh/wallpaper-select/internal/activation"
	"github.com/6gh/wallpaper-select/internal/catalog"
	"github.com/6gh/wallpaper-select/internal/config"
)

var quiet = log.New(io.Discard, "", 0)

// setup creates a wallpaper directory with three items and a config file
// pointing at it, and returns the config file path.
func setup(t *testing.T) (configPath string, wallpaperDir string) {
	t.Helper()
	dir := t.TempDir()
	wallpaperDir = filepath.Join(dir, "431960")

	items := map[string]string{
		"111": `{"title": "Ocean Waves", "type": "scene", "description": "calm sea"}`,
		"222": `{"title": "Night City", "type": "Video"}`,
		"333": `{"title": "Clock", "type": "web", "tags": ["Retro"]}`,
	}
	for id, descriptor := range items {
		itemDir := filepath.Join(wallpaperDir, id)
		if err := os.MkdirAll(itemDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(itemDir, "project.json"), []byte(descriptor), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.NewDefaultConfig()
	cfg.Constants.WallpaperEngineDirs = []string{filepath.Join(dir, "missing"), wallpaperDir}
	cfg.Constants.StartupScript = filepath.Join(dir, "scripts", "start.sh")
	cfg.Constants.TerminateTimeoutMs = 0
	cfg.SavedUIState.SortBy = catalog.SortNameAsc

	configPath = filepath.Join(dir, "config", "config.toml")
	if err := config.Save(configPath, cfg); err != nil {
		t.Fatal(err)
	}
	return configPath, wallpaperDir
}

// run executes the command tree with fresh flag values.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, configFile = false, ""
	listTypeFilter, listSearch, listSort, listJSON = catalog.KindAll, "", "", false
	applyTarget = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	configPath, wallpaperDir := setup(t)

	out, err := run(t, "--config", configPath, "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	// sorted by name from the config
	if entries[0].Title != "Clock" || entries[1].Title != "Night City" || entries[2].Title != "Ocean Waves" {
		t.Errorf("order = %s, %s, %s", entries[0].Title, entries[1].Title, entries[2].Title)
	}
	if entries[1].Type != "video" || entries[1].ID != "222" {
		t.Errorf("entry = %+v", entries[1])
	}
	if entries[0].Path != filepath.Join(wallpaperDir, "333") {
		t.Errorf("path = %q", entries[0].Path)
	}
}

func TestListFilters(t *testing.T) {
	configPath, _ := setup(t)

	tests := []struct {
		name string
		args []string
		want []string
		skip []string
	}{
		{"type", []string{"--type", "scene"}, []string{"Ocean Waves"}, []string{"Night City", "Clock"}},
		{"search description", []string{"--search", "SEA"}, []string{"Ocean Waves"}, []string{"Clock"}},
		{"no match", []string{"--type", "web", "--search", "ocean"}, []string{"No wallpapers"}, []string{"Clock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--config", configPath, "list"}, tt.args...)...)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, skip := range tt.skip {
				if strings.Contains(out, skip) {
					t.Errorf("output contains %q:\n%s", skip, out)
				}
			}
		})
	}
}

func TestListUnavailable(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.Constants.WallpaperEngineDirs = []string{filepath.Join(dir, "nope")}
	configPath := filepath.Join(dir, "config.toml")
	if err := config.Save(configPath, cfg); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "--config", configPath, "list")
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("list error = %v, want catalog unavailable", err)
	}
}

func TestConfigPath(t *testing.T) {
	configPath, _ := setup(t)

	out, err := run(t, "--config", configPath, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != configPath {
		t.Errorf("config path = %q, want %q", out, configPath)
	}
}

func TestRestoreWithoutHistory(t *testing.T) {
	configPath, _ := setup(t)

	if _, err := run(t, "--config", configPath, "restore"); err == nil {
		t.Error("restore without a previous apply succeeded")
	}
}

type fakeRenderer struct {
	mu   sync.Mutex
	live map[int]chan struct{}
	next int
}

type fakeProc struct {
	pid  int
	done chan struct{}
}

func (p *fakeProc) Pid() int    { return p.pid }
func (p *fakeProc) Wait() error { <-p.done; return nil }

func (f *fakeRenderer) Pids(ctx context.Context, name string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pids []int
	for pid := range f.live {
		pids = append(pids, pid)
	}
	return pids, nil
}

func (f *fakeRenderer) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if done, ok := f.live[pid]; ok {
		close(done)
		delete(f.live, pid)
	}
	return nil
}

func (f *fakeRenderer) Start(inv activation.Invocation) (activation.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	done := make(chan struct{})
	f.live[f.next] = done
	return &fakeProc{pid: f.next, done: done}, nil
}

func TestBackendActivateSavesLastWallpaper(t *testing.T) {
	configPath, wallpaperDir := setup(t)

	cfg := config.NewDefaultConfig()
	if err := config.ReadOrCreate(configPath, cfg); err != nil {
		t.Fatal(err)
	}
	renderer := &fakeRenderer{live: map[int]chan struct{}{}}
	b, err := newBackendWith(cfg, configPath, quiet, renderer, renderer)
	if err != nil {
		t.Fatal(err)
	}

	result, err := b.loadIndex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"111", "222"} {
		record, ok := result.Index.Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%s) failed", id)
		}
		if err := b.Activate(context.Background(), record, "HDMI-A-1"); err != nil {
			t.Fatalf("Activate(%s): %v", id, err)
		}
	}

	if n := len(renderer.live); n != 1 {
		t.Errorf("live renderers = %d, want 1", n)
	}

	saved := config.NewDefaultConfig()
	if err := config.ReadOrCreate(configPath, saved); err != nil {
		t.Fatal(err)
	}
	if saved.SavedUIState.LastSetId != "222" ||
		saved.SavedUIState.LastSetPath != filepath.Join(wallpaperDir, "222") ||
		saved.SavedUIState.LastTarget != "HDMI-A-1" {
		t.Errorf("saved state = %+v", saved.SavedUIState)
	}

	script, err := os.ReadFile(b.scriptPath())
	if err != nil {
		t.Fatalf("reading startup script: %v", err)
	}
	if !strings.Contains(string(script), filepath.Join(wallpaperDir, "222")) {
		t.Errorf("startup script does not launch the last wallpaper:\n%s", script)
	}
}
