package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/catalog"
)

var (
	listTypeFilter string
	listSearch     string
	listSort       string
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed wallpapers",
	Long:  `List the wallpapers in the first existing wallpaper directory, optionally filtered by type and text.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listTypeFilter, "type", "t", catalog.KindAll, "Filter by type (all, scene, web, video, other, unknown)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only show wallpapers whose title or description contains this text")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort by date_desc, date_asc, name_asc or name_desc (default from config)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry is a wallpaper as printed by list --json.
type listEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags,omitempty"`
	Path        string   `json:"path"`
	Preview     string   `json:"preview,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	b, err := newBackend(appConfig, configFile, logger)
	if err != nil {
		return err
	}

	result, err := b.loadIndex(cmd.Context())
	if err != nil {
		return err
	}

	sortBy := listSort
	if sortBy == "" {
		sortBy = appConfig.SavedUIState.SortBy
	}
	records := catalog.Sort(result.Index.Query(listTypeFilter, listSearch), sortBy)

	out := cmd.OutOrStdout()
	if listJSON {
		entries := make([]listEntry, 0, len(records))
		for _, r := range records {
			entries = append(entries, listEntry{
				ID:          r.ID,
				Title:       r.Title,
				Description: r.Description,
				Type:        r.Kind.String(),
				Tags:        r.Tags,
				Path:        r.SourcePath,
				Preview:     r.PreviewPath,
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling wallpapers: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No wallpapers in %s match.\n", result.Root)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Kind, r.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d of %d wallpapers in %s", len(records), result.Index.Len(), result.Root)
	if result.Skipped > 0 {
		fmt.Fprintf(out, " (%d skipped)", result.Skipped)
	}
	fmt.Fprintln(out)
	return nil
}
