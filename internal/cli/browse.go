package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/catalog"
	"github.com/6gh/wallpaper-select/internal/config"
	"github.com/6gh/wallpaper-select/internal/tui"
)

const watchDebounce = 500 * time.Millisecond

var (
	browseTarget string
	browseSort   string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search and apply wallpapers interactively",
	Long: `Open a terminal browser over the wallpaper catalog. The list reloads when
wallpapers are added or removed. With --verbose, logs go to browse.log in the
cache directory.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseTarget, "target", "", "Screen to draw on (default from config)")
	browseCmd.Flags().StringVar(&browseSort, "sort", "", "Sort by date_desc, date_asc, name_asc or name_desc (default from config)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// stderr belongs to the terminal UI now
	if verbose {
		cacheDir, err := config.EnsureCacheDir()
		if err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
		f, err := tea.LogToFile(filepath.Join(cacheDir, "browse.log"), "browse")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}

	b, err := newBackend(appConfig, configFile, logger)
	if err != nil {
		return err
	}
	b.launcher.DiscardLogs = true

	sortBy := browseSort
	if sortBy == "" {
		sortBy = appConfig.SavedUIState.SortBy
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	onStart := func(program *tea.Program) {
		root, err := catalog.ResolveRoot(b.roots)
		if err != nil {
			logger.Printf("Not watching for new wallpapers: %v", err)
			return
		}
		go func() {
			err := catalog.Watch(ctx, root, watchDebounce, logger, func() {
				program.Send(tui.ReloadMsg{})
			})
			if err != nil {
				logger.Printf("Error watching %s: %v", root, err)
			}
		}()
	}

	return tui.Run(ctx, b, targetOrDefault(browseTarget), sortBy, onStart)
}
