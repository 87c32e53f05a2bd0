package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/catalog"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Apply the last set wallpaper again",
	Args:  cobra.NoArgs,
	RunE:  runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	saved := appConfig.SavedUIState
	if saved.LastSetPath == "" && saved.LastSetId == "" {
		return errors.New("no wallpaper has been applied yet, cannot restore")
	}

	b, err := newBackend(appConfig, configFile, logger)
	if err != nil {
		return err
	}

	var record catalog.Record
	if saved.LastSetPath != "" {
		logger.Printf("Restoring wallpaper from path: %s", saved.LastSetPath)
		record, err = catalog.Parse(saved.LastSetPath)
		if err != nil {
			return fmt.Errorf("reading last set wallpaper: %w", err)
		}
	} else {
		record, err = resolveWallpaper(cmd, b, saved.LastSetId)
		if err != nil {
			return err
		}
	}

	target := targetOrDefault(saved.LastTarget)
	if err := b.Activate(cmd.Context(), record, target); err != nil {
		return fmt.Errorf("restoring %s: %w", record.ID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s (%s) on %s\n", record.Title, record.ID, target)
	return nil
}
