// Package components defines ECS components for the tag simulation.
package components

// Position is an agent's world position. X and Z span the ground plane;
// Y is altitude (0 when grounded, >0 only while a flight ability is active).
type Position struct {
	X, Y, Z float64
}

// Velocity is an agent's velocity in world units per second.
type Velocity struct {
	X, Y, Z float64
}

// PrevPosition holds the ground-plane position from the previous tick.
// Used for displacement measurement by the stuck tracker.
type PrevPosition struct {
	X, Z float64
}

// State is the behavioral state driving steering.
type State uint8

const (
	StateRoam State = iota
	StateFlee
	StateHunt
	StateTaunt
)

// String returns the state label used in logs and intent snapshots.
func (s State) String() string {
	switch s {
	case StateRoam:
		return "ROAM"
	case StateFlee:
		return "FLEE"
	case StateHunt:
		return "HUNT"
	case StateTaunt:
		return "TAUNT"
	default:
		return "UNKNOWN"
	}
}

// Profile is the immutable personality of an agent, fixed at spawn.
type Profile struct {
	ID            int
	Name          string
	Color         string // hex, consumed by external render layer
	BaseSpeed     float64
	PanicDistance float64
	Aggression    float64 // 0..1
	Risk          float64 // 0..1
	Playfulness   float64 // 0..1
}

// TagRole holds the mutable tag-game role of an agent.
type TagRole struct {
	IsIt       bool
	State      State
	TauntTimer float64 // seconds of TAUNT remaining; >0 freezes the FSM
	Score      float64 // accumulated non-IT survival seconds
	// LastTaggedBy is the id of the agent that most recently tagged this
	// agent, or -1. While hunting, this agent is excluded as a target.
	LastTaggedBy int
	// ImmuneUntil is the sim-time until which this agent cannot be
	// re-tagged after performing a tag. See systems.TagContext for the
	// canonical immunity rule.
	ImmuneUntil float64
}

// Intent is the most recent external movement hint for an agent.
// Written asynchronously by the intent runner between ticks, read
// synchronously by the steering system. Values are pre-clamped to [-1,1].
type Intent struct {
	MoveX  float64
	MoveZ  float64
	Sprint bool
}
