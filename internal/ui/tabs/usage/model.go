// Package usage provides the usage dashboard tab: period totals, the daily
// cost trend, the reported current-session record, and the local live
// estimate.
package usage

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokendeck/tokendeck/internal/app"
	"github.com/tokendeck/tokendeck/internal/services"
	"github.com/tokendeck/tokendeck/internal/ui/components"
)

// Phase is the tab's fetch lifecycle state.
type Phase int

const (
	// PhaseIdle means the tab is closed and no polling is active.
	PhaseIdle Phase = iota
	// PhaseLoading means the first fetch after opening is still in flight.
	PhaseLoading
	// PhaseReady means a snapshot is displayed and no refresh is in flight.
	PhaseReady
	// PhaseStale means the previous snapshot stays on screen while a
	// background refresh is in flight.
	PhaseStale
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseReady:
		return "Ready"
	case PhaseStale:
		return "Stale"
	default:
		return "Unknown"
	}
}

// keyMap defines the key bindings specific to the usage tab.
type keyMap struct {
	TogglePeriod key.Binding
	Refresh      key.Binding
	Up           key.Binding
	Down         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		TogglePeriod: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle period"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the usage tab state.
//
// Polling is scoped to the tab being open. Every open bumps pollGen and each
// armed tick carries the generation it was armed under; ticks whose
// generation no longer matches are dropped, so closing the tab (or reopening
// it) orphans every timer armed before that point.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	spinner  components.LoadingSpinner
	viewport viewport.Model

	width  int
	height int

	phase        Phase
	open         bool
	pollGen      int
	pollInterval time.Duration
	lastUpdated  time.Time
	lastErr      string
}

// New creates a new usage tab model.
func New(state *app.State, svc *services.Manager) *Model {
	interval := 10 * time.Second
	if svc != nil && svc.Config() != nil && svc.Config().PollInterval > 0 {
		interval = svc.Config().PollInterval
	}

	return &Model{
		state:        state,
		services:     svc,
		keys:         defaultKeyMap(),
		spinner:      components.NewSpinner("Fetching usage..."),
		viewport:     viewport.New(0, 0),
		phase:        PhaseIdle,
		pollInterval: interval,
	}
}

// Init initializes the usage tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the usage tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		if msg.Tab == app.TabUsage {
			cmds = append(cmds, m.openTab()...)
		} else {
			m.closeTab()
		}

	case app.PollTickMsg:
		cmds = append(cmds, m.handlePollTick(msg)...)

	case app.StatsLoadedMsg:
		m.handleStatsLoaded(msg)

	case app.RefreshMsg:
		if m.open && (msg.Resource == "all" || msg.Resource == "stats") {
			m.markRefreshing()
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// openTab starts a fresh poll generation and kicks off the initial fetches.
// A cached snapshot stays on screen while the first fetch is in flight, so
// the tab opens in Stale rather than Loading.
func (m *Model) openTab() []tea.Cmd {
	m.open = true
	m.pollGen++

	if stats, _, _ := m.state.GetStats(); stats != nil {
		m.phase = PhaseStale
	} else {
		m.phase = PhaseLoading
	}

	if m.services == nil {
		return nil
	}
	return []tea.Cmd{
		app.FetchStatsCmd(m.services, m.services.Period()),
		app.FetchHistoryCmd(m.services),
		app.PollTickCmd(m.pollGen, m.pollInterval),
	}
}

// closeTab invalidates the current poll generation. Any tick already armed
// arrives with a dead generation and is ignored.
func (m *Model) closeTab() {
	m.open = false
	m.pollGen++
	m.phase = PhaseIdle
}

// markRefreshing demotes Ready to Stale while a refresh is in flight; the
// previous snapshot keeps rendering. Loading stays Loading.
func (m *Model) markRefreshing() {
	if m.phase == PhaseReady {
		m.phase = PhaseStale
	}
}

func (m *Model) handlePollTick(msg app.PollTickMsg) []tea.Cmd {
	if !m.open || msg.Gen != m.pollGen {
		return nil
	}
	if m.services == nil {
		return nil
	}
	m.markRefreshing()
	return []tea.Cmd{
		app.FetchStatsCmd(m.services, m.services.Period()),
		app.PollTickCmd(m.pollGen, m.pollInterval),
	}
}

// handleStatsLoaded applies fetch outcomes in arrival order. Both outcomes
// settle back to Ready as long as a snapshot is on screen: success swaps the
// snapshot, failure keeps the previous one and only records the error. A
// failure before any snapshot exists leaves the tab in Loading.
func (m *Model) handleStatsLoaded(msg app.StatsLoadedMsg) {
	if !m.open {
		return
	}

	if msg.Err != nil {
		m.lastErr = msg.Err.Error()
		if stats, _, _ := m.state.GetStats(); stats != nil {
			m.phase = PhaseReady
		}
		return
	}

	m.lastErr = ""
	m.lastUpdated = time.Now()
	m.phase = PhaseReady
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.TogglePeriod):
		return m.togglePeriod()

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// togglePeriod flips the stats window and issues exactly one stats query for
// the new period. History is untouched; it is not period-scoped.
func (m *Model) togglePeriod() tea.Cmd {
	if m.services == nil {
		return nil
	}
	next := m.services.Period().Next()
	m.services.SetPeriod(next)
	m.markRefreshing()
	return app.FetchStatsCmd(m.services, next)
}

// Phase returns the current lifecycle phase.
func (m *Model) Phase() Phase {
	return m.phase
}

// SetSize sets the available size for the usage tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.TogglePeriod,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.TogglePeriod, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
