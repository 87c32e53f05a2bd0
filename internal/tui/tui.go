// Package tui provides a Bubble Tea browser for the wallpaper catalog.
//
// The model only talks to the rest of the application through Backend, so it
// never sees processes, files or configuration directly.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/6gh/wallpaper-select/internal/activation"
	"github.com/6gh/wallpaper-select/internal/catalog"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

// Kinds offered by the type selector, in display order.
var Kinds = []string{catalog.KindAll, "scene", "web", "video", "other", "unknown"}

// Backend is everything the browser needs from the core.
type Backend interface {
	LoadCatalog(ctx context.Context) <-chan catalog.LoadResult
	Activate(ctx context.Context, record catalog.Record, target string) error
}

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnavailable
)

// Message types
type (
	// ReloadMsg asks the browser to load the catalog again.
	ReloadMsg struct{}

	loadedMsg struct {
		seq    int
		result catalog.LoadResult
	}

	activatedMsg struct {
		record catalog.Record
		err    error
	}
)

// Model is the Bubble Tea model for the browser.
type Model struct {
	backend Backend
	target  string
	sortBy  string
	ctx     context.Context

	state   State
	search  textinput.Model
	spinner spinner.Model

	index    *catalog.Index
	root     string
	skipped  int
	loadErr  error
	loadSeq  int
	kind     int
	filtered []catalog.Record
	cursor   int

	applying bool
	status   string
	statusOK bool

	width  int
	height int
}

// NewModel creates a browser that activates wallpapers on target and orders
// the catalog by sortBy.
func NewModel(ctx context.Context, backend Backend, target string, sortBy string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search wallpapers..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	return Model{
		backend: backend,
		target:  target,
		sortBy:  sortBy,
		ctx:     ctx,
		state:   StateLoading,
		search:  ti,
		spinner: sp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.load(m.loadSeq))
}

func (m Model) load(seq int) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		return loadedMsg{seq: seq, result: <-backend.LoadCatalog(ctx)}
	}
}

func (m Model) activate(record catalog.Record) tea.Cmd {
	backend, ctx, target := m.backend, m.ctx, m.target
	return func() tea.Msg {
		return activatedMsg{record: record, err: backend.Activate(ctx, record, target)}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ReloadMsg:
		return m.reload()

	case loadedMsg:
		// a newer load superseded this one
		if msg.seq != m.loadSeq {
			return m, nil
		}
		if msg.result.Err != nil {
			m.state = StateUnavailable
			m.loadErr = msg.result.Err
			m.index = nil
			m.refilter()
			return m, nil
		}
		m.state = StateReady
		m.loadErr = nil
		m.root = msg.result.Root
		m.skipped = msg.result.Skipped
		m.index = catalog.NewIndex(catalog.Sort(msg.result.Index.Records(), m.sortBy))
		m.refilter()
		return m, nil

	case activatedMsg:
		m.applying = false
		if msg.err != nil {
			m.status = describeError(msg.err)
			m.statusOK = false
		} else {
			m.status = fmt.Sprintf("Applied %s on %s", msg.record.Title, m.target)
			m.statusOK = true
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+r":
			return m.reload()

		case "tab":
			m.kind = (m.kind + 1) % len(Kinds)
			m.refilter()
			return m, nil

		case "shift+tab":
			m.kind = (m.kind + len(Kinds) - 1) % len(Kinds)
			m.refilter()
			return m, nil

		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil

		case "pgup":
			m.cursor = max(0, m.cursor-m.pageSize())
			return m, nil

		case "pgdown":
			m.cursor = max(0, min(len(m.filtered)-1, m.cursor+m.pageSize()))
			return m, nil

		case "enter":
			if m.applying || len(m.filtered) == 0 {
				return m, nil
			}
			record := m.filtered[m.cursor]
			m.applying = true
			m.status = "Applying " + record.Title + "..."
			m.statusOK = true
			return m, m.activate(record)
		}
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loadSeq++
	m.state = StateLoading
	return m, tea.Batch(m.spinner.Tick, m.load(m.loadSeq))
}

// refilter runs the query against the current snapshot and keeps the cursor
// on the same wallpaper when it is still visible.
func (m *Model) refilter() {
	var selectedPath string
	if m.cursor < len(m.filtered) {
		selectedPath = m.filtered[m.cursor].SourcePath
	}

	m.filtered = m.index.Query(Kinds[m.kind], m.search.Value())
	m.cursor = 0
	for i, record := range m.filtered {
		if record.SourcePath == selectedPath {
			m.cursor = i
			break
		}
	}
}

func (m Model) pageSize() int {
	if m.height > 14 {
		return m.height - 14
	}
	return 10
}

// Filtered returns the records currently shown.
func (m Model) Filtered() []catalog.Record {
	return m.filtered
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Wallpaper Select"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	tabs := make([]string, len(Kinds))
	for i, kind := range Kinds {
		if i == m.kind {
			tabs[i] = activeTabStyle.Render(kind)
		} else {
			tabs[i] = tabStyle.Render(kind)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View() + " Loading wallpapers...\n")
	case StateUnavailable:
		b.WriteString(errorStyle.Render("Wallpaper directory unavailable: "+m.loadErr.Error()) + "\n")
		b.WriteString(dimStyle.Render("Fix wallpaper_engine_dirs in the config, then press ctrl+r.") + "\n")
	default:
		b.WriteString(m.listView())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusOK {
			b.WriteString(successStyle.Render(m.status))
		} else {
			b.WriteString(errorStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("type to search • tab type • ↑/↓ move • enter apply • ctrl+r reload • esc quit"))
	return b.String()
}

func (m Model) listView() string {
	var b strings.Builder

	total := m.index.Len()
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%d of %d wallpapers in %s (%d skipped)", len(m.filtered), total, m.root, m.skipped)))

	if len(m.filtered) == 0 {
		b.WriteString("No wallpapers match.\n")
		return b.String()
	}

	page := m.pageSize()
	start := 0
	if m.cursor >= page {
		start = m.cursor - page + 1
	}
	end := min(len(m.filtered), start+page)

	for i := start; i < end; i++ {
		record := m.filtered[i]
		line := fmt.Sprintf("%-40s %s", truncate(record.Title, 40), kindStyle.Render(record.Kind.String()))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(boxStyle.Render(details(m.filtered[m.cursor])))
	b.WriteString("\n")
	return b.String()
}

func details(record catalog.Record) string {
	lines := []string{
		selectedStyle.Render(record.Title),
		"ID:   " + record.ID,
		"Type: " + record.Kind.String(),
		"Path: " + record.SourcePath,
	}
	if record.HasPreview() {
		lines = append(lines, "Preview: "+record.PreviewPath)
	}
	if len(record.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(record.Tags, ", "))
	}
	if record.Description != "" {
		lines = append(lines, "", truncate(record.Description, 300))
	}
	return strings.Join(lines, "\n")
}

func describeError(err error) string {
	var actErr *activation.Error
	switch {
	case errors.Is(err, activation.ErrInvalidSelection):
		return "Wallpaper no longer exists, reload the list: " + err.Error()
	case errors.As(err, &actErr):
		return fmt.Sprintf("Failed to apply wallpaper (%s): %v", actErr.Step, actErr.Err)
	default:
		return "Failed to apply wallpaper: " + err.Error()
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// Run starts the browser and blocks until the user quits. program is handed
// to onStart so callers can Send messages (such as ReloadMsg) from outside.
func Run(ctx context.Context, backend Backend, target string, sortBy string, onStart func(program *tea.Program)) error {
	program := tea.NewProgram(NewModel(ctx, backend, target, sortBy), tea.WithAltScreen(), tea.WithContext(ctx))
	if onStart != nil {
		onStart(program)
	}
	_, err := program.Run()
	return err
}
