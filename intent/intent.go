// Package intent implements the external movement-hint boundary. An
// out-of-process bridge (typically LLM-driven) receives a compact world
// snapshot on a slow cadence and answers with bounded per-agent movement
// hints. Hints are advisory blend weights, never authoritative: on any
// failure agents simply keep their previous hint.
package intent

import (
	"context"
	_ "embed"
	"encoding/json"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Hint is one agent's movement suggestion, clamped to [-1,1] per axis.
type Hint struct {
	ID     int     `json:"id"`
	MoveX  float64 `json:"moveX"`
	MoveZ  float64 `json:"moveZ"`
	Sprint bool    `json:"sprint"`
}

// AgentObs is one agent's entry in the outbound snapshot. Positions are
// quantized; the bridge has no business with sub-tile precision.
type AgentObs struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	State string  `json:"state"`
}

// Snapshot is the compact outbound world view.
type Snapshot struct {
	Tick   int64      `json:"tick"`
	ItID   int        `json:"it"`
	Agents []AgentObs `json:"agents"`
}

// Source supplies hints for a snapshot. Implementations own their
// transport and deadlines.
type Source interface {
	Fetch(ctx context.Context, snap Snapshot) ([]Hint, error)
	Close() error
}

//go:embed hint_schema.json
var hintSchemaJSON string

var hintSchema = jsonschema.MustCompileString("hint_schema.json", hintSchemaJSON)

// Quantize rounds v to the given step. Step <= 0 leaves v untouched.
func Quantize(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// ParseHints decodes an inbound hint payload. The payload must be a
// JSON array; entries failing the hint schema are dropped individually
// (the agent keeps its prior intent) and surviving entries are clamped.
// A payload that is not an array at all is a full-call failure.
func ParseHints(payload []byte) ([]Hint, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	out := make([]Hint, 0, len(raw))
	for _, entry := range raw {
		var v any
		if err := json.Unmarshal(entry, &v); err != nil {
			continue
		}
		if err := hintSchema.Validate(v); err != nil {
			continue
		}
		var h Hint
		if err := json.Unmarshal(entry, &h); err != nil {
			continue
		}
		h.MoveX = clampUnit(h.MoveX)
		h.MoveZ = clampUnit(h.MoveZ)
		out = append(out, h)
	}
	return out, nil
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
