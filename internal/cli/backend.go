package cli

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/6gh/wallpaper-select/internal/activation"
	"github.com/6gh/wallpaper-select/internal/catalog"
	"github.com/6gh/wallpaper-select/internal/config"
)

// backend connects the commands and the browser to the catalog and the
// activation service, and remembers the last applied wallpaper in the config.
type backend struct {
	cfg        *config.ConfigStruct
	configFile string
	logger     *log.Logger

	roots    []string
	loader   *catalog.Loader
	launcher *activation.DetachedLauncher
	service  *activation.Service

	saveMu sync.Mutex
}

func newBackend(cfg *config.ConfigStruct, configFile string, logger *log.Logger) (*backend, error) {
	launcher := &activation.DetachedLauncher{DiscardLogs: cfg.Constants.DiscardProcessLogs, Logger: logger}
	return newBackendWith(cfg, configFile, logger, activation.PidofTable{}, launcher)
}

func newBackendWith(cfg *config.ConfigStruct, configFile string, logger *log.Logger, procs activation.ProcessTable, launcher activation.Launcher) (*backend, error) {
	roots := make([]string, 0, len(cfg.Constants.WallpaperEngineDirs))
	for _, dir := range cfg.Constants.WallpaperEngineDirs {
		root, err := config.ResolvePath(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving wallpaper directory %q: %w", dir, err)
		}
		roots = append(roots, root)
	}

	scriptPath, err := config.ResolvePath(cfg.Constants.StartupScript)
	if err != nil {
		return nil, fmt.Errorf("resolving startup script path: %w", err)
	}

	var assetsDir string
	if cfg.Constants.WallpaperEngineAssets != "" {
		assetsDir, err = config.ResolvePath(cfg.Constants.WallpaperEngineAssets)
		if err != nil {
			return nil, fmt.Errorf("resolving assets directory: %w", err)
		}
	}

	supervisor := activation.NewSupervisor(cfg.Constants.ProcessName, procs, launcher, logger)
	supervisor.StopTimeout = time.Duration(cfg.Constants.TerminateTimeoutMs) * time.Millisecond

	service := activation.NewService(activation.Options{
		Bin:         cfg.Constants.LinuxWallpaperEngineBin,
		ProcessName: cfg.Constants.ProcessName,
		Scaling:     cfg.Constants.Scaling,
		AssetsDir:   assetsDir,
		ScriptPath:  scriptPath,
	}, supervisor, logger)

	b := &backend{
		cfg:        cfg,
		configFile: configFile,
		logger:     logger,
		roots:      roots,
		loader:     catalog.NewLoader(cfg.Constants.LoadWorkers, logger),
		service:    service,
	}
	if detached, ok := launcher.(*activation.DetachedLauncher); ok {
		b.launcher = detached
	}
	return b, nil
}

func (b *backend) LoadCatalog(ctx context.Context) <-chan catalog.LoadResult {
	return b.loader.Load(ctx, b.roots)
}

// loadIndex loads the catalog and waits for the result.
func (b *backend) loadIndex(ctx context.Context) (catalog.LoadResult, error) {
	result := <-b.LoadCatalog(ctx)
	if result.Err != nil {
		return result, fmt.Errorf("loading wallpapers: %w", result.Err)
	}
	if result.Skipped > 0 {
		b.logger.Printf("Skipped %d wallpapers with unreadable metadata", result.Skipped)
	}
	return result, nil
}

// Activate applies record on target and records it as the last set wallpaper.
// A failure to save the config is logged; the wallpaper is already running.
func (b *backend) Activate(ctx context.Context, record catalog.Record, target string) error {
	if err := b.service.Activate(ctx, record, target); err != nil {
		return err
	}

	b.saveMu.Lock()
	defer b.saveMu.Unlock()
	b.cfg.SavedUIState.LastSetId = record.ID
	b.cfg.SavedUIState.LastSetPath = record.SourcePath
	b.cfg.SavedUIState.LastTarget = target
	if err := config.Save(b.configFile, b.cfg); err != nil {
		b.logger.Printf("Warning: failed to save last set wallpaper: %v", err)
	}
	return nil
}

// scriptPath is where the startup script is written.
func (b *backend) scriptPath() string {
	if state, ok := b.service.Current(); ok {
		return state.ScriptPath
	}
	path, _ := config.ResolvePath(b.cfg.Constants.StartupScript)
	return path
}

func targetOrDefault(target string) string {
	if target != "" {
		return target
	}
	return appConfig.Constants.DefaultTarget
}
