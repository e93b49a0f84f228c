package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/livepreview/internal/adapters/driven/watcher"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/httpserver"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/mcp"
	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/services"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// mcpStdio selects the stdio transport for --mcp-addr.
const mcpStdio = "stdio"

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a document and notify viewers when it changes",
	Long: `Serve a document over HTTP and push a reload notification to every
connected viewer whenever it changes on disk.

The watch directory is watched recursively; after each burst of changes
the served file is compared with what viewers last received and a
notification goes out only if its content differs.

Use --mcp-addr to let an agent trigger reloads and query status over the
Model Context Protocol ("stdio" or a host:port for streamable HTTP).

Examples:
  livepreview serve notes.txt
  livepreview serve --inline --watch-dir docs docs/book.html
  livepreview serve report.txt --mcp-addr 127.0.0.1:3001`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("addr", "", "listen address (default from server.address)")
	f.String("watch-dir", "", "directory watched for changes (default from serve.watch_dir)")
	f.Bool("inline", false, "send the new content with each notification")
	f.Duration("debounce", 0, "quiet period before a burst of changes is handled")
	f.Duration("poll", 0, "also re-check the file on this interval (0 disables)")
	f.String("mcp-addr", "", `serve MCP tools on this address, or "stdio"`)
}

// applyServeFlags overrides settings with explicitly set flags.
func applyServeFlags(cmd *cobra.Command, args []string, s *domain.ServeSettings) error {
	f := cmd.Flags()
	var err error
	if f.Changed("addr") {
		if s.Address, err = f.GetString("addr"); err != nil {
			return err
		}
	}
	if f.Changed("watch-dir") {
		if s.WatchDir, err = f.GetString("watch-dir"); err != nil {
			return err
		}
	}
	if f.Changed("inline") {
		if s.Inline, err = f.GetBool("inline"); err != nil {
			return err
		}
	}
	if err := durationFlag(cmd, "debounce", &s.Debounce); err != nil {
		return err
	}
	if err := durationFlag(cmd, "poll", &s.PollInterval); err != nil {
		return err
	}
	if len(args) > 0 {
		s.File = args[0]
	}
	if s.File == "" {
		return errors.New("no document to serve: pass a file or set serve.file")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, args, &settings.Serve); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	mcpAddr, err := cmd.Flags().GetString("mcp-addr")
	if err != nil {
		return fmt.Errorf("getting mcp-addr flag: %w", err)
	}

	cfg := settings.Serve
	path, err := filepath.Abs(cfg.File)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", cfg.File, err)
	}

	hub := httpserver.NewHub()
	detector, err := services.NewChangeDetector(path, cfg.Inline, hub)
	if err != nil {
		return err
	}
	if err := detector.Prime(); err != nil {
		return err
	}

	w, err := watcher.New(cfg.WatchDir, cfg.Debounce)
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	server, err := httpserver.NewServer(&httpserver.Ports{Serve: detector, Hub: hub})
	if err != nil {
		return err
	}

	cmd.Printf("Serving %s on http://%s\n", path, cfg.Address)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return server.Run(ctx, cfg.Address) })
	g.Go(func() error { return detector.Run(ctx, w) })

	if poller := services.NewPoller(cfg.PollInterval, detector); poller.Enabled() {
		logger.Info("Polling %s every %s.", path, cfg.PollInterval)
		g.Go(func() error { return ignoreCancel(poller.Start(ctx)) })
	}

	if mcpAddr != "" {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Serve: detector})
		if err != nil {
			return err
		}
		g.Go(func() error {
			if mcpAddr == mcpStdio {
				return ignoreCancel(mcpServer.Run(ctx))
			}
			return httpserver.ListenAndServe(ctx, mcpAddr, mcpServer.Handler(), nil)
		})
	}

	return g.Wait()
}

// ignoreCancel treats shutdown through the context as a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// durationFlag reads a duration flag only when set.
func durationFlag(cmd *cobra.Command, name string, dst *time.Duration) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	d, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
