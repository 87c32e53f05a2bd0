package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/catalog"
)

var applyTarget string

var applyCmd = &cobra.Command{
	Use:   "apply <id|path>",
	Short: "Apply a wallpaper",
	Long: `Stop the running renderer, start the given wallpaper and write the startup script.

The wallpaper is either a workshop ID from the catalog or a path to a wallpaper directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyTarget, "target", "", "Screen to draw on (default from config)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	b, err := newBackend(appConfig, configFile, logger)
	if err != nil {
		return err
	}

	record, err := resolveWallpaper(cmd, b, args[0])
	if err != nil {
		return err
	}

	target := targetOrDefault(applyTarget)
	if err := b.Activate(cmd.Context(), record, target); err != nil {
		return fmt.Errorf("applying %s: %w", record.ID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %s (%s) on %s\n", record.Title, record.ID, target)
	fmt.Fprintf(cmd.OutOrStdout(), "Startup script written to %s\n", b.scriptPath())
	return nil
}

// resolveWallpaper treats arg as a directory when it looks like a path and
// as a catalog ID otherwise.
func resolveWallpaper(cmd *cobra.Command, b *backend, arg string) (catalog.Record, error) {
	if strings.ContainsRune(arg, os.PathSeparator) || arg == "." {
		record, err := catalog.Parse(arg)
		if err != nil {
			return catalog.Record{}, fmt.Errorf("reading wallpaper %s: %w", arg, err)
		}
		return record, nil
	}

	result, err := b.loadIndex(cmd.Context())
	if err != nil {
		return catalog.Record{}, err
	}
	record, ok := result.Index.Lookup(arg)
	if !ok {
		return catalog.Record{}, fmt.Errorf("no wallpaper with ID %q in %s", arg, result.Root)
	}
	return record, nil
}
