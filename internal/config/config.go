// Package config reads and writes the TOML configuration file and resolves
// the XDG directories the application keeps its state in.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type ConstantsStruct struct {
	DiscardProcessLogs      bool     `toml:"discard_process_logs"      comment:"Whether to pipe the renderer's logs to /dev/null"`
	LinuxWallpaperEngineBin string   `toml:"linux_wallpaperengine_bin" comment:"The renderer binary; an absolute path in case the binary isn't in PATH"`
	ProcessName             string   `toml:"process_name"              comment:"The process name used to find and stop an already running renderer"`
	WallpaperEngineDirs     []string `toml:"wallpaper_engine_dirs"     comment:"Candidate workshop content directories, probed in order; the first that exists is used"`
	WallpaperEngineAssets   string   `toml:"wallpaper_engine_assets"   comment:"The absolute path to the assets directory of Wallpaper Engine; passed as --assets-dir when set"`
	StartupScript           string   `toml:"startup_script"            comment:"Where the restart script is written after every activation; run it from your session autostart"`
	Scaling                 string   `toml:"scaling"                   comment:"Scaling mode passed to the renderer"`
	DefaultTarget           string   `toml:"default_target"            comment:"Screen identifier used when none is given, e.g. eDP-1 or HDMI-A-1"`
	TerminateTimeoutMs      int64    `toml:"terminate_timeout_ms"      comment:"How long to wait for an old renderer to exit before launching the new one; 0 disables the wait"`
	LoadWorkers             int      `toml:"load_workers"              comment:"How many wallpaper directories are parsed concurrently"`
	ThumbnailSize           int      `toml:"thumbnail_size"            comment:"Edge length in pixels of cached preview thumbnails"`
}

type SavedUIStateStruct struct {
	LastSetId   string `toml:"last_set_id"   comment:"The last set wallpaper ID"`
	LastSetPath string `toml:"last_set_path" comment:"The last set wallpaper directory, used by restore"`
	LastTarget  string `toml:"last_target"   comment:"The screen the last wallpaper was set on"`
	SortBy      string `toml:"sort_by"       comment:"The criteria to sort wallpapers by. 'date_desc', 'date_asc', 'name_desc', 'name_asc'"`
}

type ConfigStruct struct {
	Constants    ConstantsStruct    `toml:"Constants"`
	SavedUIState SavedUIStateStruct `toml:"SavedUIState"`
}

// NewDefaultConfig returns the configuration written on first run.
func NewDefaultConfig() *ConfigStruct {
	home := os.Getenv("HOME")

	return &ConfigStruct{
		Constants: ConstantsStruct{
			DiscardProcessLogs:      true,
			LinuxWallpaperEngineBin: "linux-wallpaperengine",
			ProcessName:             "linux-wallpaperengine",
			WallpaperEngineDirs: []string{
				filepath.Join(home, ".steam", "steam", "steamapps", "workshop", "content", "431960"),
				filepath.Join(home, ".local", "share", "Steam", "steamapps", "workshop", "content", "431960"),
				filepath.Join(home, "MyDisk", "SteamLibrary", "steamapps", "workshop", "content", "431960"),
			},
			WallpaperEngineAssets: "",
			StartupScript:         filepath.Join(home, ".config", "hypr", "Scripts", "wallpaper-engine-start.sh"),
			Scaling:               "fill",
			DefaultTarget:         "eDP-1",
			TerminateTimeoutMs:    2000,
			LoadWorkers:           8,
			ThumbnailSize:         128,
		},
		SavedUIState: SavedUIStateStruct{
			SortBy: "date_desc",
		},
	}
}

// ReadOrCreate loads configFile into config, or writes config to it when the
// file does not exist yet. The result is validated either way.
func ReadOrCreate(configFile string, config *ConfigStruct) error {
	content, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Config file does not exist, creating default at: %s", configFile)
		config.Validate()
		if err := Save(configFile, config); err != nil {
			return err
		}
		log.Printf("Default config file created at: %s", configFile)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(content, config); err != nil {
		return fmt.Errorf("failed to unmarshal config file %s: %w", configFile, err)
	}
	config.Validate()
	log.Printf("Config file loaded from: %s", configFile)

	return nil
}

// Validate makes sure required fields are set, falling back to defaults.
func (c *ConfigStruct) Validate() {
	defaultConfig := NewDefaultConfig()

	if c.Constants.LinuxWallpaperEngineBin == "" {
		c.Constants.LinuxWallpaperEngineBin = defaultConfig.Constants.LinuxWallpaperEngineBin
	}
	if c.Constants.ProcessName == "" {
		c.Constants.ProcessName = defaultConfig.Constants.ProcessName
	}
	if len(c.Constants.WallpaperEngineDirs) == 0 {
		c.Constants.WallpaperEngineDirs = defaultConfig.Constants.WallpaperEngineDirs
	}
	if c.Constants.StartupScript == "" {
		c.Constants.StartupScript = defaultConfig.Constants.StartupScript
	}
	if c.Constants.Scaling == "" {
		c.Constants.Scaling = defaultConfig.Constants.Scaling
	}
	if c.Constants.DefaultTarget == "" {
		c.Constants.DefaultTarget = defaultConfig.Constants.DefaultTarget
	}
	if c.Constants.TerminateTimeoutMs < 0 {
		c.Constants.TerminateTimeoutMs = 0
	}
	if c.Constants.LoadWorkers < 1 {
		c.Constants.LoadWorkers = defaultConfig.Constants.LoadWorkers
	}
	if c.Constants.ThumbnailSize < 1 {
		c.Constants.ThumbnailSize = defaultConfig.Constants.ThumbnailSize
	}
	if c.SavedUIState.SortBy == "" {
		c.SavedUIState.SortBy = defaultConfig.SavedUIState.SortBy
	}
}

// Save writes config to configFile, creating its directory if needed.
func Save(configFile string, config *ConfigStruct) error {
	if _, err := EnsureDir(filepath.Dir(configFile)); err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	content, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	if err := os.WriteFile(configFile, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("Config saved to: %s", configFile)
	return nil
}

// FilePath is the location of config.toml inside configDir.
func FilePath(configDir string) string {
	return filepath.Join(configDir, "config.toml")
}
