package ui

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/peledor/lifelines/internal/diag"
)

// captureStderr redirects os.Stderr to a pipe and returns the captured output.
func captureStderr(fn func()) string {
	r, w, _ := os.Pipe()
	orig := os.Stderr
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = orig

	buf := make([]byte, 8192)
	n, _ := r.Read(buf)
	r.Close()
	return string(buf[:n])
}

func TestSummaryLine(t *testing.T) {
	cases := []struct {
		lines    int
		warnings int
		want     string
	}{
		{1, 0, "1 lifeline"},
		{3, 0, "3 lifelines"},
		{2, 1, "2 lifelines, 1 warning"},
		{5, 4, "5 lifelines, 4 warnings"},
		{0, 0, "0 lifelines"},
	}
	for _, c := range cases {
		if got := SummaryLine(c.lines, c.warnings); got != c.want {
			t.Errorf("SummaryLine(%d, %d) = %q, want %q", c.lines, c.warnings, got, c.want)
		}
	}
}

func TestCheck_PassAndFail(t *testing.T) {
	p := New()

	output := captureStderr(func() {
		p.Check("lane catalog", nil)
	})
	if !strings.Contains(output, "✓ lane catalog") {
		t.Errorf("expected pass marker, got: %s", output)
	}

	output = captureStderr(func() {
		p.Check("geometry", errors.New("2 non-monotonic paths"))
	})
	if !strings.Contains(output, "✗ geometry") {
		t.Errorf("expected fail marker, got: %s", output)
	}
	if !strings.Contains(output, "2 non-monotonic paths") {
		t.Errorf("expected error detail, got: %s", output)
	}
}

func TestWarningGroups_GroupsByKind(t *testing.T) {
	p := New()
	events := []diag.Event{
		{Kind: diag.KindSkippedRow, Subject: "row 4", Detail: "missing name"},
		{Kind: diag.KindUnknownLane, Subject: "avi-cohen", Lane: "limbo"},
		{Kind: diag.KindSkippedRow, Subject: "row 9", Detail: "bad capture date"},
	}

	output := captureStderr(func() {
		p.WarningGroups(events)
	})

	checks := []struct {
		name   string
		substr string
	}{
		{"total count", "3 warnings"},
		{"skipped group", "skipped_row"},
		{"unknown lane group", "unknown_lane"},
		{"subject", "row 4"},
		{"lane tag", "[limbo]"},
		{"detail", "bad capture date"},
	}
	for _, c := range checks {
		if !strings.Contains(output, c.substr) {
			t.Errorf("expected output to contain %s (%q), got:\n%s", c.name, c.substr, output)
		}
	}
}

func TestWarningGroups_Clean(t *testing.T) {
	p := New()
	output := captureStderr(func() {
		p.WarningGroups(nil)
	})
	if !strings.Contains(output, "no data-quality warnings") {
		t.Errorf("expected clean message, got: %s", output)
	}
}

func TestRenderDone_WritesToStderr(t *testing.T) {
	p := New()
	output := captureStderr(func() {
		p.RenderDone("out.svg", 12, 2)
	})
	if !strings.Contains(output, "out.svg") {
		t.Errorf("expected destination path, got: %s", output)
	}
	if !strings.Contains(output, "12 lifelines, 2 warnings") {
		t.Errorf("expected summary suffix, got: %s", output)
	}
}

func TestWatchRender_Timestamped(t *testing.T) {
	p := New()
	at := time.Date(2026, 2, 15, 9, 30, 45, 0, time.UTC)
	output := captureStderr(func() {
		p.WatchRender(at, "out.svg", 3, 0)
	})
	if !strings.Contains(output, "[09:30:45]") {
		t.Errorf("expected timestamp, got: %s", output)
	}
	if !strings.Contains(output, "3 lifelines") {
		t.Errorf("expected summary, got: %s", output)
	}
}
