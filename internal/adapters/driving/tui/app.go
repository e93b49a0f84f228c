package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/livepreview/internal/adapters/driving/tui/views/preview"
	"github.com/custodia-labs/livepreview/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// Update never calls the coordinator directly: the coordinator may be
// blocked sending to the event loop, so every call into it runs as a
// tea.Cmd.
type App struct {
	ports  *Ports
	bridge *Bridge
	ctx    context.Context

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	preview   *preview.View
	statusBar *status.Bar

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, bridge *Bridge) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if bridge == nil {
		return nil, ErrMissingBridge
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		bridge:    bridge,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		preview:   preview.NewView(s, km, bridge.record),
		statusBar: status.NewBar(s, km),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("livepreview")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		switch k := msg.String(); {
		case keymap.Matches(k, a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(k, a.keymap.Reload):
			return a, a.reload()
		}
		a.preview, cmd = a.preview.Update(msg)
		return a, cmd

	case messages.StatusChanged:
		a.statusBar.SetStatus(msg.Status)
		return a, nil

	case messages.ScrollSettled:
		if !a.preview.Settled(msg.Seq) {
			return a, nil
		}
		return a, func() tea.Msg {
			a.bridge.notifySettled()
			return nil
		}

	case messages.Quit:
		return a, tea.Quit
	}

	a.preview, cmd = a.preview.Update(msg)
	return a, cmd
}

// reload starts a manual re-fetch off the event loop.
func (a *App) reload() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if a.ports.Reload != nil {
			a.ports.Reload.Handle(ctx, domain.ReloadEvent{})
			return nil
		}
		gen := a.ports.Preview.Advance()
		a.ports.Preview.Reload(ctx, gen, nil)
		return nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.preview.View() + "\n" + a.statusBar.View()
}

// NewProgram creates the Bubbletea program and attaches the bridge to it.
// Surface calls made before the program runs block until it does.
func (a *App) NewProgram(opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(a.ctx),
	}, opts...)
	p := tea.NewProgram(a, opts...)
	a.bridge.Attach(p)
	return p
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	_, err := a.NewProgram().Run()
	return err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Preview returns the document view.
func (a *App) Preview() *preview.View {
	return a.preview
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// SetDimensions sets the terminal dimensions, keeping one line for the status bar.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.preview.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
