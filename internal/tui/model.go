// Package tui is the interactive explorer over a computed scene: a
// lane-filterable list of individuals with a scrollable detail pane showing
// each one's events, per-lane rows, path segments, and gradient stops.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/gradient"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// maxListRows caps the list pane; the rest of the screen goes to the
// detail viewport.
const maxListRows = 10

// Entry is one individual with their computed geometry and styling.
type Entry struct {
	Ind   *record.Individual
	Path  geom.Path
	Stops []gradient.Stop
	Rows  map[lane.ID]int // row per occupied lane, resolved
}

// Model is the root explorer model.
type Model struct {
	entries []Entry
	lanes   []lane.Def
	keys    KeyMap

	visible []int // indices into entries after the lane filter
	cursor  int   // index into visible
	filter  int   // -1 = all lanes, else index into lanes

	detail viewport.Model
	width  int
	height int
	ready  bool
}

// NewModel builds the explorer over precomputed entries.
func NewModel(entries []Entry, cat lane.Catalog) Model {
	m := Model{
		entries: entries,
		lanes:   cat.Defs(),
		keys:    DefaultKeyMap(),
		filter:  -1,
	}
	m.applyFilter()
	return m
}

// Run starts the explorer in the alternate screen and blocks until quit.
func Run(entries []Entry, cat lane.Catalog) error {
	p := tea.NewProgram(NewModel(entries, cat), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := msg.Width-4, msg.Height-m.listHeight()-5
		if h < 3 {
			h = 3
		}
		if !m.ready {
			m.detail = viewport.New(w, h)
			m.ready = true
		} else {
			m.detail.Width = w
			m.detail.Height = h
		}
		m.refreshDetail()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
			m.refreshDetail()
		case key.Matches(msg, m.keys.Bottom):
			if len(m.visible) > 0 {
				m.cursor = len(m.visible) - 1
			}
			m.refreshDetail()
		case key.Matches(msg, m.keys.Filter):
			m.cycleFilter()
		default:
			// Remaining keys scroll the detail viewport.
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// move shifts the cursor within the visible list.
func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.refreshDetail()
}

// cycleFilter advances the lane filter: all lanes, then each lane in
// stacking order.
func (m *Model) cycleFilter() {
	m.filter++
	if m.filter >= len(m.lanes) {
		m.filter = -1
	}
	m.cursor = 0
	m.applyFilter()
}

// applyFilter recomputes the visible set for the current lane filter.
func (m *Model) applyFilter() {
	m.visible = m.visible[:0]
	for i := range m.entries {
		if m.filter < 0 {
			m.visible = append(m.visible, i)
			continue
		}
		if _, ok := m.entries[i].Rows[m.lanes[m.filter].ID]; ok {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = 0
	}
	m.refreshDetail()
}

// refreshDetail rebuilds the detail pane for the selected entry.
func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	if len(m.visible) == 0 {
		m.detail.SetContent(styleDetailLabel.Render("no individuals in this lane"))
		return
	}
	m.detail.SetContent(detailContent(m.entries[m.visible[m.cursor]]))
	m.detail.GotoTop()
}

// View renders header, list, detail, and footer.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.listView())
	b.WriteString(styleDetailBorder.Width(m.width - 2).Render(m.detail.View()))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	label := "all lanes"
	if m.filter >= 0 {
		label = m.lanes[m.filter].Label
	}
	line := fmt.Sprintf("lifelines  %s  %s",
		styleHeaderCount.Render(fmt.Sprintf("%d", len(m.visible))),
		styleHeaderFilter.Render(label))
	return styleHeader.Width(m.width).Render(line)
}

func (m Model) listHeight() int {
	if len(m.visible) < maxListRows {
		return len(m.visible)
	}
	return maxListRows
}

func (m Model) listView() string {
	if len(m.visible) == 0 {
		return styleRowNormal.Render("  no individuals in this lane") + "\n"
	}

	// Keep the cursor inside the visible window.
	h := m.listHeight()
	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}

	var b strings.Builder
	for i := start; i < start+h && i < len(m.visible); i++ {
		e := m.entries[m.visible[i]]
		j := e.Ind.Journey()
		line := fmt.Sprintf("%s %-24s %s",
			journeyStyle(j).Render(journeyIcon(j)),
			truncate(e.Ind.Name, 24),
			journeyStyle(j).Render(j.String()))
		if i == m.cursor {
			b.WriteString(styleSelectionIndicator.Render(selectionIndicator))
			b.WriteString(styleRowSelected.Render(line))
		} else {
			b.WriteString(" ")
			b.WriteString(styleRowNormal.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) footerView() string {
	keys := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Filter, m.keys.Quit}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, styleFooterKey.Render(k.Help().Key)+" "+styleFooterDesc.Render(k.Help().Desc))
	}
	return strings.Join(parts, styleFooterSep.Render(" · "))
}

// detailContent formats the full dossier for one entry.
func detailContent(e Entry) string {
	in := e.Ind
	var b strings.Builder

	b.WriteString(styleDetailTitle.Render(in.Name))
	b.WriteString("  ")
	b.WriteString(styleDetailLabel.Render(in.ID))
	b.WriteString("\n")
	b.WriteString(styleDetailLabel.Render("journey "))
	b.WriteString(journeyStyle(in.Journey()).Render(in.Journey().String()))
	if in.Method != record.MethodNone {
		b.WriteString(styleDetailLabel.Render("  method "))
		b.WriteString(methodStyle(in.Method).Render(in.Method.String()))
	}
	b.WriteString("\n\n")

	b.WriteString(styleDetailLabel.Render("events") + "\n")
	for _, ev := range in.Events {
		fmt.Fprintf(&b, "  %s  %s\n", ev.Date.Format("2006-01-02"), styleDetailValue.Render(string(ev.Kind)))
	}
	b.WriteString("\n")

	b.WriteString(styleDetailLabel.Render("rows") + "\n")
	for _, ln := range in.Occupancy() {
		if row, ok := e.Rows[ln]; ok {
			fmt.Fprintf(&b, "  %-20s row %d\n", ln, row)
		}
	}
	b.WriteString("\n")

	b.WriteString(styleDetailLabel.Render("segments") + "\n")
	if len(e.Path.Segments) == 0 {
		b.WriteString(styleDetailLabel.Render("  (no geometry)") + "\n")
	}
	for _, s := range e.Path.Segments {
		switch seg := s.(type) {
		case geom.Run:
			fmt.Fprintf(&b, "  run         y %.1f   x %.1f to %.1f\n", seg.Y, seg.X1, seg.X2)
		case geom.Transition:
			fmt.Fprintf(&b, "  transition  %s to %s at x %.1f  r %.1f/%.1f\n",
				seg.From, seg.To, seg.CornerX, seg.R1, seg.R2)
		}
	}
	b.WriteString("\n")

	b.WriteString(styleDetailLabel.Render("gradient") + "\n")
	for _, s := range e.Stops {
		fmt.Fprintf(&b, "  %6.2f%%  %s\n", s.Offset, s.Color)
	}
	return b.String()
}

func methodStyle(mm record.Method) lipgloss.Style {
	switch mm {
	case record.MethodOperation:
		return lipgloss.NewStyle().Foreground(colorOperation)
	case record.MethodDeal:
		return lipgloss.NewStyle().Foreground(colorReleased)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
