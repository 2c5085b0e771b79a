package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/gradient"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// --- fixtures ---

func day(n int) time.Time {
	return time.Date(2023, 10, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func captiveEntry() Entry {
	in := &record.Individual{
		ID:     "cap-1",
		Name:   "Avi Cohen",
		Events: []record.Event{{Kind: record.EventCaptured, Date: day(0)}},
		Path:   []record.Waypoint{{Lane: lane.Captive, Date: day(0), Event: record.EventCaptured}},
		Method: record.MethodNone,
	}
	return Entry{
		Ind:   in,
		Stops: []gradient.Stop{{Offset: 0, Color: "#FF8C00"}, {Offset: 100, Color: "#FF8C00"}},
		Rows:  map[lane.ID]int{lane.Captive: 0},
	}
}

func releasedEntry() Entry {
	in := &record.Individual{
		ID:   "rel-1",
		Name: "Noa Levi",
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: day(0)},
			{Kind: record.EventReleased, Date: day(50)},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: day(0), Event: record.EventCaptured},
			{Lane: lane.ReleasedDeal, Date: day(50), Event: record.EventReleased},
		},
		Method: record.MethodDeal,
	}
	return Entry{
		Ind: in,
		Path: geom.Path{
			Segments: []geom.Segment{
				geom.Run{Y: 60, X1: 10, X2: 40},
				geom.Transition{From: lane.Captive, To: lane.ReleasedDeal, CornerX: 50, R1: 8, R2: 8},
				geom.Run{Y: 20, X1: 60, X2: 100},
			},
		},
		Stops: []gradient.Stop{
			{Offset: 0, Color: "#FF8C00"},
			{Offset: 40, Color: "#FF8C00"},
			{Offset: 60, Color: "#228B22"},
			{Offset: 100, Color: "#228B22"},
		},
		Rows: map[lane.ID]int{lane.Captive: 1, lane.ReleasedDeal: 0},
	}
}

func deceasedEntry() Entry {
	in := &record.Individual{
		ID:   "dec-1",
		Name: "Uri Mor",
		Events: []record.Event{
			{Kind: record.EventCaptured, Date: day(0)},
			{Kind: record.EventDied, Date: day(30)},
		},
		Path: []record.Waypoint{
			{Lane: lane.Captive, Date: day(0), Event: record.EventCaptured},
			{Lane: lane.DiedCaptivity, Date: day(30), Event: record.EventDied},
		},
		Method: record.MethodNone,
	}
	return Entry{
		Ind:  in,
		Rows: map[lane.ID]int{lane.Captive: 2, lane.DiedCaptivity: 0},
	}
}

func testEntries() []Entry {
	return []Entry{captiveEntry(), releasedEntry(), deceasedEntry()}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	res, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return res.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		res, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		m = res.(Model)
	}
	return m
}

// --- construction ---

func TestNewModel_AllVisible(t *testing.T) {
	t.Parallel()

	m := NewModel(testEntries(), lane.Default())
	if got, want := len(m.visible), 3; got != want {
		t.Errorf("visible = %d entries, want %d", got, want)
	}
	if m.filter != -1 {
		t.Errorf("filter = %d, want -1", m.filter)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	if m.ready {
		t.Error("ready before the first WindowSizeMsg")
	}
}

// --- sizing ---

func TestUpdate_WindowSize(t *testing.T) {
	t.Parallel()

	m := sized(t, NewModel(testEntries(), lane.Default()))
	if !m.ready {
		t.Fatal("model not ready after WindowSizeMsg")
	}
	if got, want := m.detail.Width, 96; got != want {
		t.Errorf("detail width = %d, want %d", got, want)
	}
	if m.detail.Height <= 0 {
		t.Errorf("detail height = %d, want > 0", m.detail.Height)
	}
}

// --- cursor ---

func TestUpdate_CursorMovement(t *testing.T) {
	t.Parallel()

	base := sized(t, NewModel(testEntries(), lane.Default()))

	t.Run("down clamps at last entry", func(t *testing.T) {
		m := press(t, base, "j", "j", "j", "j")
		if got, want := m.cursor, 2; got != want {
			t.Errorf("cursor = %d, want %d", got, want)
		}
	})

	t.Run("up clamps at zero", func(t *testing.T) {
		m := press(t, base, "k")
		if m.cursor != 0 {
			t.Errorf("cursor = %d, want 0", m.cursor)
		}
	})

	t.Run("bottom then top jumps", func(t *testing.T) {
		m := press(t, base, "G")
		if got, want := m.cursor, 2; got != want {
			t.Fatalf("cursor after G = %d, want %d", got, want)
		}
		m = press(t, m, "g")
		if m.cursor != 0 {
			t.Errorf("cursor after g = %d, want 0", m.cursor)
		}
	})
}

// --- lane filter ---

func TestUpdate_FilterCycle(t *testing.T) {
	t.Parallel()

	base := sized(t, NewModel(testEntries(), lane.Default()))

	t.Run("first lane keeps only its occupants", func(t *testing.T) {
		m := press(t, base, "f") // released-deal
		if got, want := len(m.visible), 1; got != want {
			t.Fatalf("visible = %d, want %d", got, want)
		}
		if got := m.entries[m.visible[0]].Ind.ID; got != "rel-1" {
			t.Errorf("visible entry = %s, want rel-1", got)
		}
	})

	t.Run("empty lane shows placeholder", func(t *testing.T) {
		m := press(t, base, "f", "f") // released-operation, unoccupied
		if len(m.visible) != 0 {
			t.Fatalf("visible = %d, want 0", len(m.visible))
		}
		if !strings.Contains(m.View(), "no individuals in this lane") {
			t.Error("View() missing the empty-lane placeholder")
		}
	})

	t.Run("captive lane holds everyone", func(t *testing.T) {
		m := press(t, base, "f", "f", "f")
		if got, want := len(m.visible), 3; got != want {
			t.Errorf("visible = %d, want %d", got, want)
		}
	})

	t.Run("cycle wraps back to all lanes", func(t *testing.T) {
		m := press(t, base, "f", "f", "f", "f", "f", "f")
		if m.filter != -1 {
			t.Errorf("filter = %d, want -1", m.filter)
		}
		if got, want := len(m.visible), 3; got != want {
			t.Errorf("visible = %d, want %d", got, want)
		}
	})

	t.Run("cursor resets on filter change", func(t *testing.T) {
		m := press(t, base, "j", "j", "f")
		if m.cursor != 0 {
			t.Errorf("cursor = %d, want 0", m.cursor)
		}
	})
}

// --- quit ---

func TestUpdate_QuitKey(t *testing.T) {
	t.Parallel()

	m := NewModel(testEntries(), lane.Default())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit key produced %T, want tea.QuitMsg", cmd())
	}
}

// --- rendering ---

func TestView_ListAndHeader(t *testing.T) {
	t.Parallel()

	m := sized(t, NewModel(testEntries(), lane.Default()))
	out := m.View()
	for _, want := range []string{
		"lifelines",
		"all lanes",
		"Avi Cohen",
		"Noa Levi",
		"Uri Mor",
		"still-captive",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestView_BeforeSizing(t *testing.T) {
	t.Parallel()

	m := NewModel(testEntries(), lane.Default())
	if got := m.View(); !strings.Contains(got, "loading") {
		t.Errorf("View() before sizing = %q, want loading placeholder", got)
	}
}

func TestDetailContent_Dossier(t *testing.T) {
	t.Parallel()

	out := detailContent(releasedEntry())
	for _, want := range []string{
		"Noa Levi",
		"rel-1",
		"released-alive",
		"method",
		"2023-10-07",
		"2023-11-26",
		"row 0",
		"row 1",
		"captive to released-deal",
		"60.00%",
		"#228B22",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detailContent() missing %q", want)
		}
	}
}

func TestDetailContent_NoGeometry(t *testing.T) {
	t.Parallel()

	out := detailContent(deceasedEntry())
	if !strings.Contains(out, "no geometry") {
		t.Error("detailContent() missing the no-geometry placeholder")
	}
	if !strings.Contains(out, "died-in-captivity") {
		t.Error("detailContent() missing the journey classification")
	}
}
