package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/custodia-labs/livepreview/internal/adapters/driven/notify/websocket"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/render/textdoc"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/source/filesource"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/source/httpsource"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/surface/headless"
	"github.com/custodia-labs/livepreview/internal/adapters/driven/watcher"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/httpserver"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui"
	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/core/services"
	"github.com/custodia-labs/livepreview/internal/logger"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show a served document and follow its changes",
	Long: `Show the document from a running "livepreview serve" and reload it
whenever the server sends a notification.

Failed loads are retried every 200ms, up to 20 times, before the viewer
gives up and waits for the next notification. The scroll position is
saved when scrolling stops and restored after every reload.

In a terminal the document is shown in a scrollable view. Otherwise, or
with --headless, each rendered generation is written to stdout.

Use --file to follow a local file directly, without a server.

Controls:
  ↑/k, ↓/j    - Scroll
  ←/h, →/l    - Scroll sideways
  PgUp/PgDn   - Page
  g/G         - Top / bottom
  r           - Reload now
  q           - Quit`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	addViewFlags(viewCmd)
	rootCmd.AddCommand(viewCmd)
}

func addViewFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("server", "", "address of the serve command (default from server.address)")
	f.String("file", "", "follow a local file instead of a server")
	f.Float64("scale", 0, "scale applied to each page (default from viewer.scale)")
	f.Bool("text", false, "extract a text layer for every page")
	f.String("data-dir", "", "directory of the position database (default from viewer.data_dir)")
	f.Bool("ephemeral", false, "keep the scroll position in memory only")
	f.Bool("headless", false, "write rendered pages to stdout even in a terminal")
}

// viewOptions are the view-only flags not backed by settings.
type viewOptions struct {
	file      string
	ephemeral bool
	headless  bool
}

func applyViewFlags(cmd *cobra.Command, s *domain.ViewerSettings) (viewOptions, error) {
	f := cmd.Flags()
	var opts viewOptions
	var err error
	if f.Changed("server") {
		if s.ServerAddress, err = f.GetString("server"); err != nil {
			return opts, err
		}
	}
	if f.Changed("scale") {
		if s.Scale, err = f.GetFloat64("scale"); err != nil {
			return opts, err
		}
	}
	if f.Changed("text") {
		if s.ExtractText, err = f.GetBool("text"); err != nil {
			return opts, err
		}
	}
	if f.Changed("data-dir") {
		if s.DataDir, err = f.GetString("data-dir"); err != nil {
			return opts, err
		}
	}
	if opts.file, err = f.GetString("file"); err != nil {
		return opts, err
	}
	if opts.ephemeral, err = f.GetBool("ephemeral"); err != nil {
		return opts, err
	}
	if opts.headless, err = f.GetBool("headless"); err != nil {
		return opts, err
	}
	return opts, nil
}

// documentChannel is where the document comes from and how reloads arrive.
type documentChannel struct {
	source   driven.DocumentSource
	notifier driven.ReloadNotifier
	close    func() error
}

func openChannel(opts viewOptions, s domain.ViewerSettings) (*documentChannel, error) {
	if opts.file != "" {
		path, err := filepath.Abs(opts.file)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", opts.file, err)
		}
		src, err := filesource.New(path)
		if err != nil {
			return nil, err
		}
		w, err := watcher.New(filepath.Dir(path), domain.DefaultDebounce)
		if err != nil {
			return nil, err
		}
		return &documentChannel{source: src, notifier: w, close: w.Close}, nil
	}

	src, err := httpsource.New(
		"http://"+s.ServerAddress+httpserver.PathServed,
		httpsource.WithRate(s.FetchRate),
	)
	if err != nil {
		return nil, err
	}
	notifier := websocket.New("ws://" + s.ServerAddress + httpserver.PathWebSocket)
	return &documentChannel{source: src, notifier: notifier, close: func() error { return nil }}, nil
}

func openPositions(opts viewOptions, s domain.ViewerSettings) (driven.PositionStore, func() error, error) {
	if opts.ephemeral {
		return memory.NewPositionStore(), func() error { return nil }, nil
	}
	store, err := sqlite.NewStore(s.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening position store: %w", err)
	}
	return store.PositionStore(), store.Close, nil
}

func runView(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	opts, err := applyViewFlags(cmd, &settings.Viewer)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	channel, err := openChannel(opts, settings.Viewer)
	if err != nil {
		return err
	}
	defer channel.close() //nolint:errcheck

	positions, closePositions, err := openPositions(opts, settings.Viewer)
	if err != nil {
		return err
	}
	defer closePositions() //nolint:errcheck

	interactive := !opts.headless && term.IsTerminal(int(os.Stdout.Fd()))

	var surface interface {
		driven.Surface
		driven.Viewport
	}
	var bridge *tui.Bridge
	if interactive {
		bridge = tui.NewBridge()
		surface = bridge
	} else {
		surface = headless.New(cmd.OutOrStdout())
	}

	coordinator, err := services.NewCoordinator(services.CoordinatorDeps{
		Source:    channel.source,
		Engine:    textdoc.New(),
		Surface:   surface,
		Viewport:  surface,
		Positions: positions,
		Render:    settings.Viewer.RenderOptions(),
	})
	if err != nil {
		return err
	}
	trigger, err := services.NewReloadTrigger(coordinator, coordinator.Positions())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer func() {
		cancel()
		coordinator.Wait()
	}()

	if !interactive {
		coordinator.InitialLoad(ctx)
		return trigger.Run(ctx, channel.notifier)
	}

	return runInteractive(ctx, cancel, coordinator, trigger, bridge, channel.notifier)
}

// runInteractive runs the terminal view until the user quits.
func runInteractive(
	ctx context.Context,
	cancel context.CancelFunc,
	coordinator *services.Coordinator,
	trigger *services.ReloadTrigger,
	bridge *tui.Bridge,
	notifier driven.ReloadNotifier,
) error {
	restore, err := logToFile()
	if err != nil {
		return err
	}
	defer restore()

	app, err := tui.NewApp(&tui.Ports{Preview: coordinator, Reload: trigger}, bridge)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := app.WithContext(ctx).NewProgram()

	coordinator.InitialLoad(ctx)
	return followReloads(ctx, cancel, trigger, notifier, func() error {
		_, err := program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}

// followReloads feeds notifications to trigger while run executes. When
// run returns the context is cancelled and the listener is joined, so no
// reload starts after followReloads returns. A failed listener is logged
// and leaves run going, since reloads can still be requested by hand.
func followReloads(
	ctx context.Context,
	cancel context.CancelFunc,
	trigger *services.ReloadTrigger,
	notifier driven.ReloadNotifier,
	run func() error,
) error {
	var g errgroup.Group
	g.Go(func() error {
		if err := trigger.Run(ctx, notifier); err != nil {
			logger.Error("Reload channel stopped: %v", err)
		}
		return nil
	})

	err := run()
	cancel()
	g.Wait() //nolint:errcheck
	return err
}

// logToFile sends log output to a file while the terminal is in use.
func logToFile() (func(), error) {
	path := filepath.Join(os.TempDir(), "livepreview.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	prev := logger.Output()
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(prev)
		f.Close() //nolint:errcheck
	}, nil
}
