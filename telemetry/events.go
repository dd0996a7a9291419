// Package telemetry provides tag-play statistics, CSV output, and the
// compressed event log.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// EventType identifies event log entries.
type EventType string

const (
	EventTag     EventType = "tag"
	EventUnlock  EventType = "unlock"
	EventAbility EventType = "ability"
	EventEscape  EventType = "escape"
	EventWarp    EventType = "warp"
)

// Event is one event log entry, serialized as a JSON line.
type Event struct {
	Type  EventType `json:"type"`
	Tick  int64     `json:"tick"`
	Time  float64   `json:"time"`
	Agent int       `json:"agent"`

	// Optional fields depending on event type
	Target  int     `json:"target,omitempty"`  // tag: who got tagged
	X       float64 `json:"x,omitempty"`       // warp: destination
	Z       float64 `json:"z,omitempty"`
	Ability string  `json:"ability,omitempty"` // unlock/ability
	Cause   string  `json:"cause,omitempty"`   // escape/warp: diagnosed cause
}

// EventLog appends events as zstd-compressed JSON lines. A nil log
// discards everything.
type EventLog struct {
	f   *os.File
	zw  *zstd.Encoder
	enc *json.Encoder
}

// NewEventLog opens (truncating) an event log at path.
func NewEventLog(path string) (*EventLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating event log: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	return &EventLog{f: f, zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Write appends one event.
func (l *EventLog) Write(ev Event) error {
	if l == nil {
		return nil
	}
	if err := l.enc.Encode(ev); err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return nil
}

// Close flushes the compressor and closes the file.
func (l *EventLog) Close() error {
	if l == nil {
		return nil
	}
	if err := l.zw.Close(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
