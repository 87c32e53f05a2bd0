package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/config"
	"github.com/6gh/wallpaper-select/internal/thumbnail"
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Cache preview thumbnails for every wallpaper",
	Args:  cobra.NoArgs,
	RunE:  runThumbnails,
}

func init() {
	rootCmd.AddCommand(thumbnailsCmd)
}

func runThumbnails(cmd *cobra.Command, args []string) error {
	b, err := newBackend(appConfig, configFile, logger)
	if err != nil {
		return err
	}

	result, err := b.loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	cacheDir, err := config.EnsureCacheDir()
	if err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	cache := thumbnail.NewCache(filepath.Join(cacheDir, "thumbnails"), appConfig.Constants.ThumbnailSize, logger)

	ready, failed, err := cache.Warm(cmd.Context(), result.Index.Records(), appConfig.Constants.LoadWorkers)
	if err != nil {
		return fmt.Errorf("caching thumbnails: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d thumbnails ready in %s", ready, cache.Dir)
	if failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d failed (run with --verbose for details)", failed)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
