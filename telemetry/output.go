package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/chase/config"
	"github.com/pthm-cable/chase/systems"
)

// OutputManager handles structured run output: windowed stats and the
// tag ledger as CSV, plus the compressed event log.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	tagsFile      *os.File
	events        *EventLog

	// Track if headers have been written
	telemetryHeaderWritten bool
	tagsHeaderWritten      bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(dir, "tags.csv"))
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating tags.csv: %w", err)
	}
	om.tagsFile = f

	events, err := NewEventLog(filepath.Join(dir, "events.jsonl.zst"))
	if err != nil {
		om.telemetryFile.Close()
		om.tagsFile.Close()
		return nil, err
	}
	om.events = events

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.telemetryHeaderWritten {
		if err := gocsv.Marshal(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.telemetryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.telemetryFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}

	return nil
}

// WriteTag appends one tag to the tags.csv ledger.
func (om *OutputManager) WriteTag(rec systems.TagRecord) error {
	if om == nil {
		return nil
	}

	records := []systems.TagRecord{rec}

	if !om.tagsHeaderWritten {
		if err := gocsv.Marshal(records, om.tagsFile); err != nil {
			return fmt.Errorf("writing tag record: %w", err)
		}
		om.tagsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.tagsFile); err != nil {
			return fmt.Errorf("writing tag record: %w", err)
		}
	}

	return nil
}

// WriteEvent appends one entry to the compressed event log.
func (om *OutputManager) WriteEvent(ev Event) error {
	if om == nil {
		return nil
	}
	return om.events.Write(ev)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.telemetryFile != nil {
		if err := om.telemetryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.tagsFile != nil {
		if err := om.tagsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.events != nil {
		if err := om.events.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
