package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// AppName is the directory name used under the XDG config and cache homes.
const AppName = "wallpaper-select"

// ResolvePath expands a leading ~/ and makes the path absolute.
func ResolvePath(pathString string) (string, error) {
	// users can write ~ in the config file, so make sure that we resolve it
	if pathString == "~" || strings.HasPrefix(pathString, "~/") {
		usr, err := user.Current()
		if err != nil {
			return "", err
		}

		pathString = filepath.Join(usr.HomeDir, strings.TrimPrefix(pathString, "~"))
	}

	if !filepath.IsAbs(pathString) {
		absPath, err := filepath.Abs(pathString)
		if err != nil {
			return "", err
		}
		pathString = absPath
	}

	return pathString, nil
}

// EnsureDir resolves the path and creates it (and its parents) if missing.
func EnsureDir(pathString string) (string, error) {
	pathString, err := ResolvePath(pathString)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(pathString, 0755); err != nil {
		return "", err
	}
	return pathString, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/wallpaper-select without creating it.
func ConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

// CacheDir returns $XDG_CACHE_HOME/wallpaper-select without creating it.
func CacheDir() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		cacheDir = filepath.Join(os.Getenv("HOME"), ".cache")
	}
	return filepath.Join(cacheDir, AppName)
}

func EnsureConfigDir() (string, error) {
	return EnsureDir(ConfigDir())
}

func EnsureCacheDir() (string, error) {
	return EnsureDir(CacheDir())
}
