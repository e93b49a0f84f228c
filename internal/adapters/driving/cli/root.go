// Package cli provides the livepreview command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/livepreview/internal/adapters/driven/config/file"
	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/core/services"
	"github.com/custodia-labs/livepreview/internal/logger"
)

var (
	// version is overridden at build time with -ldflags.
	version = "dev"

	verbose   bool
	configDir string

	// settingsService is built from --config-dir unless injected.
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "livepreview",
	Short: "Live preview of a document while it is being edited",
	Long: `livepreview shows a document and reloads it whenever it changes.

Run "livepreview serve" next to the file you are editing, then
"livepreview view" to watch it (or open the served page in a browser).
The viewer keeps its scroll position across reloads and survives the
server restarting.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug and info messages")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.livepreview)")
}

// SetSettingsService injects the settings service used by every command.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetVersion sets the version reported by "livepreview version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if settingsService != nil {
		return nil
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// loadSettings resolves the stored settings.
func loadSettings() (*domain.PreviewSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
