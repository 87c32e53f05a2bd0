// Package cli implements the wallpaper-select command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/6gh/wallpaper-select/internal/config"
)

var (
	verbose    bool
	configFile string

	appConfig *config.ConfigStruct
	logger    *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Browse and apply Wallpaper Engine wallpapers with linux-wallpaperengine",
	Long: config.AppName + ` scans your Steam Workshop wallpapers, lets you filter them by type and
text, and runs the chosen one with linux-wallpaperengine. After every apply a
startup script is written so the wallpaper comes back on the next login.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log what is happening to stderr")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/"+config.AppName+"/config.toml)")
}

// Execute runs the root command with the build version injected via ldflags.
func Execute(version string) error {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
	logger = log.Default()

	path := configFile
	if path == "" {
		path = config.FilePath(config.ConfigDir())
	}
	path, err := config.ResolvePath(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	configFile = path

	cfg := config.NewDefaultConfig()
	if err := config.ReadOrCreate(configFile, cfg); err != nil {
		return err
	}
	appConfig = cfg
	return nil
}
