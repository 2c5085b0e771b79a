// Package ingest loads the tracked-individuals dataset from CSV. Source
// spreadsheets vary in header wording, column order, and date formats, so
// headers are matched by alias and dates are tried against several layouts.
// Problems stay row-local: a malformed row is skipped with a warning while
// the rest of the batch proceeds. Only an unusable header or an empty
// usable set is a hard error.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

// Sentinel errors for dataset loading.
var (
	ErrNoRecords = errors.New("no usable records")
	ErrBadHeader = errors.New("unrecognized header")
)

// dateFormats are tried in order. UTC throughout; the data carries dates,
// not times.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// headerAliases maps normalized header cells to canonical column names.
var headerAliases = map[string]string{
	"id":             "id",
	"name":           "name",
	"hostage name":   "name",
	"full name":      "name",
	"status":         "status",
	"current status": "status",
	"captured":       "captured",
	"capture date":   "captured",
	"kidnapped":      "captured",
	"kidnapped date": "captured",
	"abducted":       "captured",
	"origin date":    "captured",
	"died":           "died",
	"death":          "died",
	"death date":     "died",
	"released":       "released",
	"release date":   "released",
	"returned":       "returned",
	"return date":    "returned",
	"body returned":  "returned",
	"method":         "method",
	"release method": "method",
	"order":          "order",
	"event order":    "order",
}

// Load reads the dataset at path.
func Load(path string, log *diag.Log) ([]record.Individual, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()

	recs, err := Read(f, log)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return recs, nil
}

// Read parses a CSV dataset into individuals. Row-level problems are
// warnings; an empty result is ErrNoRecords.
func Read(r io.Reader, log *diag.Log) ([]record.Individual, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := mapHeader(header)
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: no name column", ErrBadHeader)
	}

	var out []record.Individual
	seen := make(map[string]bool)
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			log.Warn(diag.KindSkippedRow, rowRef(rowNum), "", err.Error())
			continue
		}
		in, ok := parseRow(row, cols, rowNum, log)
		if !ok {
			continue
		}
		if seen[in.ID] {
			log.Warn(diag.KindSkippedRow, in.ID, "", "duplicate id")
			continue
		}
		seen[in.ID] = true
		out = append(out, in)
	}
	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	return out, nil
}

// mapHeader resolves each header cell to its canonical column index. Cells
// with no alias are ignored; the first occurrence of a column wins.
func mapHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		canon, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := cols[canon]; dup {
			continue
		}
		cols[canon] = i
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	h = strings.ReplaceAll(h, "-", " ")
	return strings.Join(strings.Fields(h), " ")
}

// parseRow builds one individual from a data row. The second result is
// false when the row was skipped.
func parseRow(row []string, cols map[string]int, rowNum int, log *diag.Log) (record.Individual, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := get("name")
	if name == "" {
		log.Warn(diag.KindSkippedRow, rowRef(rowNum), "", "missing name")
		return record.Individual{}, false
	}
	id := get("id")
	if id == "" {
		id = fmt.Sprintf("entry-%03d", rowNum)
	}

	captured, ok := parseDate(get("captured"))
	if !ok {
		log.Warn(diag.KindSkippedRow, id, "", "missing or unparseable capture date")
		return record.Individual{}, false
	}

	evs := []record.Event{{Kind: record.EventCaptured, Date: captured}}
	for _, c := range []struct {
		col  string
		kind record.EventKind
	}{
		{"died", record.EventDied},
		{"released", record.EventReleased},
		{"returned", record.EventReturned},
	} {
		raw := get(c.col)
		if raw == "" {
			continue
		}
		d, ok := parseDate(raw)
		if !ok {
			log.Warn(diag.KindBadDate, id, "", fmt.Sprintf("unparseable %s date %q; event dropped", c.kind, raw))
			continue
		}
		evs = append(evs, record.Event{Kind: c.kind, Date: d})
	}
	record.SortEvents(evs)

	method := parseMethod(get("method"))
	orderKey := rowNum
	if raw := get("order"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			orderKey = n
		}
	}

	in := record.Individual{
		ID:       id,
		Name:     name,
		Events:   evs,
		Path:     buildPath(evs, method),
		Method:   method,
		OrderKey: orderKey,
	}
	if err := in.Validate(); err != nil {
		log.Warn(diag.KindSkippedRow, id, "", err.Error())
		return record.Individual{}, false
	}

	if status := get("status"); status != "" {
		if want, ok := statusFamily(status); ok && want != journeyFamily(in.Journey()) {
			log.Warn(diag.KindStatusClash, id, "",
				fmt.Sprintf("declared status %q, derived %s", status, in.Journey()))
		}
	}
	return in, true
}

// buildPath maps the sorted events onto lane waypoints. A death on the
// capture date starts the line in the deceased lane rather than cornering
// at the origin.
func buildPath(evs []record.Event, m record.Method) []record.Waypoint {
	ws := make([]record.Waypoint, 0, len(evs))
	for _, ev := range evs {
		ln, ok := laneFor(ev.Kind, m)
		if !ok {
			continue
		}
		ws = append(ws, record.Waypoint{Lane: ln, Date: ev.Date, Event: ev.Kind})
	}
	if len(ws) >= 2 && ws[0].Lane == lane.Captive && ws[1].Lane == lane.DiedCaptivity &&
		!ws[1].Date.After(ws[0].Date) {
		ws = ws[1:]
	}
	return record.CollapsePath(ws)
}

func laneFor(k record.EventKind, m record.Method) (lane.ID, bool) {
	switch k {
	case record.EventCaptured:
		return lane.Captive, true
	case record.EventDied:
		return lane.DiedCaptivity, true
	case record.EventReleased:
		if m == record.MethodOperation {
			return lane.ReleasedOperation, true
		}
		return lane.ReleasedDeal, true
	case record.EventReturned:
		return lane.BodyReturned, true
	}
	return "", false
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseMethod(s string) record.Method {
	s = strings.ToLower(s)
	switch {
	case s == "":
		return record.MethodNone
	case strings.Contains(s, "operation"), strings.Contains(s, "military"), strings.Contains(s, "rescue"):
		return record.MethodOperation
	case strings.Contains(s, "deal"), strings.Contains(s, "negotiat"),
		strings.Contains(s, "exchange"), strings.Contains(s, "unilateral"):
		return record.MethodDeal
	default:
		return record.MethodNone
	}
}

// statusFamily coarsens a declared status into the same buckets as
// journeyFamily, for cross-checking derived journeys against the sheet.
func statusFamily(s string) (string, bool) {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "body"), strings.Contains(s, "returned"),
		strings.Contains(s, "dead"), strings.Contains(s, "deceased"),
		strings.Contains(s, "died"), strings.Contains(s, "killed"):
		return "dead", true
	case strings.Contains(s, "released"), strings.Contains(s, "freed"):
		return "released", true
	case strings.Contains(s, "captiv"), strings.Contains(s, "held"), strings.Contains(s, "hostage"):
		return "captive", true
	}
	return "", false
}

func journeyFamily(j record.Journey) string {
	switch j {
	case record.JourneyReleasedAlive:
		return "released"
	case record.JourneyStillCaptive:
		return "captive"
	default:
		return "dead"
	}
}

func rowRef(n int) string {
	return fmt.Sprintf("row-%d", n)
}
