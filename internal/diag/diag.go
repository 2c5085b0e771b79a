// Package diag records data-quality warnings and run lifecycle events as a
// JSONL stream. Every layout pass carries a run id; every fallback the
// pipeline takes (unknown lane, bad coordinate, skipped row) is recorded
// once per cause, making degraded renders auditable after the fact.
package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of diagnostic event.
const (
	KindUnknownLane   = "unknown_lane"
	KindMissingRow    = "missing_row"
	KindBadCoordinate = "bad_coordinate"
	KindEmptyPath     = "empty_path"
	KindBadGradient   = "bad_gradient"
	KindSkippedRow    = "skipped_row"
	KindBadDate       = "bad_date"
	KindStatusClash   = "status_mismatch"
	KindLayoutPass    = "layout_pass"
	KindRenderDone    = "render_done"
)

// Event is a single diagnostic record. Warnings carry the subject (usually
// an individual's id) and, where relevant, the lane involved.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Lane      string    `json:"lane,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes diagnostic events to a JSONL file. It is safe for
// concurrent use. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates an Emitter appending JSONL events to the file at path,
// creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diag: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("diag: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("diag: close: %w", err)
	}
	return nil
}

// Log collects the warnings of one layout run. The same cause, identified
// by (kind, subject, lane), is recorded exactly once no matter how many
// times it is reported. A nil *Log is a valid no-op sink, so library code
// can warn unconditionally.
type Log struct {
	RunID string

	emit     *Emitter
	seen     map[string]bool
	warnings []Event
}

// NewLog creates a warning log for one run with a fresh run id. The emitter
// may be nil when no JSONL trail is wanted.
func NewLog(emit *Emitter) *Log {
	return &Log{
		RunID: uuid.NewString(),
		emit:  emit,
		seen:  make(map[string]bool),
	}
}

// Warn records a data-quality warning, deduplicated per cause.
func (l *Log) Warn(kind, subject, laneID, detail string) {
	if l == nil {
		return
	}
	key := kind + "|" + subject + "|" + laneID
	if l.seen[key] {
		return
	}
	l.seen[key] = true

	evt := Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		RunID:     l.RunID,
		Subject:   subject,
		Lane:      laneID,
		Detail:    detail,
	}
	l.warnings = append(l.warnings, evt)
	_ = l.emit.Emit(evt)
}

// Event records a run lifecycle event. Unlike Warn, it is never
// deduplicated and does not count as a warning.
func (l *Log) Event(kind string, data any) {
	if l == nil {
		return
	}
	_ = l.emit.Emit(Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		RunID:     l.RunID,
		Data:      data,
	})
}

// Warnings returns the recorded warnings in report order.
func (l *Log) Warnings() []Event {
	if l == nil {
		return nil
	}
	out := make([]Event, len(l.warnings))
	copy(out, l.warnings)
	return out
}

// Count returns the number of distinct warnings recorded.
func (l *Log) Count() int {
	if l == nil {
		return 0
	}
	return len(l.warnings)
}
