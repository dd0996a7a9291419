package systems

import "math"

// StuckParams configures the three-tier stuck escalation: diagnose at
// DiagnoseAfter ticks, steer-escape from EscapeAfter, teleport at
// RelocateAfter. Cheap correction first, guaranteed correction last —
// full stillness is the one unacceptable outcome in a live demo.
type StuckParams struct {
	MinDisplacement float64 // per-tick displacement below which the agent counts as stuck
	MinIntent       float64 // commanded speed above which immobility counts

	DiagnoseAfter int
	EscapeAfter   int
	RelocateAfter int

	EscapeSamples  int     // evenly spaced candidate directions
	EscapeDistance float64 // probe distance for candidate scoring
	EscapeSpeed    float64 // magnitude of the override velocity

	ClearanceCap       float64 // per-obstacle clearance cap in scoring
	InBoundsBonus      float64
	CenterPull         float64
	AgentPenalty       float64
	AgentPenaltyRadius float64

	RelocateGrid  int     // candidate grid resolution per arena side
	TravelPenalty float64 // relocation penalty per unit distance from the stuck position
}

// StuckCause labels the diagnosed root cause of immobility. Diagnostic
// output only; it never drives control flow.
type StuckCause uint8

const (
	CauseNone StuckCause = iota
	CauseObstacle
	CauseBoundary
	CauseCrowd
	CauseUnknown
)

// String returns the cause label used in logs.
func (c StuckCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseObstacle:
		return "obstacle"
	case CauseBoundary:
		return "boundary"
	case CauseCrowd:
		return "crowd"
	default:
		return "unknown"
	}
}

// StuckResolution is the action the tracker took this tick.
type StuckResolution uint8

const (
	ResolutionNone StuckResolution = iota
	ResolutionEscape
	ResolutionWarp
)

// StuckRecord is the per-agent counter state. Ephemeral; reset by
// normal movement.
type StuckRecord struct {
	Counter   int
	LastCause StuckCause
	Escapes   int
	Warps     int
}

// StuckTracker diagnoses immobility and computes escape vectors and
// relocation points against the shared arena geometry.
type StuckTracker struct {
	p     StuckParams
	arena *Arena
}

// NewStuckTracker creates a tracker over the shared arena geometry.
func NewStuckTracker(p StuckParams, arena *Arena) *StuckTracker {
	return &StuckTracker{p: p, arena: arena}
}

// Update inspects the agent's true displacement this tick and escalates
// as configured. While the counter sits in the escape band an override
// velocity is returned every tick; the counter itself only resets on
// real movement or after a warp, so a fruitless escape still climbs
// toward relocation.
func (st *StuckTracker) Update(rec *StuckRecord, x, z, prevX, prevZ, intentSpeed float64, others []AgentPoint) (StuckResolution, Vec2) {
	disp := distance(prevX, prevZ, x, z)
	if disp >= st.p.MinDisplacement || intentSpeed < st.p.MinIntent {
		// Moving normally (or not trying to move): decay.
		rec.Counter -= 2
		if rec.Counter <= 0 {
			rec.Counter = 0
			rec.LastCause = CauseNone
		}
		return ResolutionNone, Vec2{}
	}

	rec.Counter++

	if rec.Counter == st.p.DiagnoseAfter {
		rec.LastCause = st.diagnose(x, z, others)
	}

	if rec.Counter >= st.p.RelocateAfter {
		rec.Warps++
		rec.Counter = 0
		return ResolutionWarp, st.relocate(x, z, others)
	}

	if rec.Counter >= st.p.EscapeAfter {
		rec.Escapes++
		return ResolutionEscape, st.escape(x, z, others).Scale(st.p.EscapeSpeed)
	}

	return ResolutionNone, Vec2{}
}

// diagnose runs the root-cause tests: obstacle contact, boundary
// proximity, then agent crowding.
func (st *StuckTracker) diagnose(x, z float64, others []AgentPoint) StuckCause {
	if _, c := st.arena.NearestObstacle(x, z); c < 0.5 {
		return CauseObstacle
	}
	if st.arena.BoundaryClearance(x, z) < 0.5 {
		return CauseBoundary
	}
	crowd := 0
	for _, o := range others {
		if distance(x, z, o.X, o.Z) < st.p.AgentPenaltyRadius {
			crowd++
		}
	}
	if crowd >= 2 {
		return CauseCrowd
	}
	return CauseUnknown
}

// escape samples evenly spaced directions and returns the unit vector
// toward the best-scoring probe point.
func (st *StuckTracker) escape(x, z float64, others []AgentPoint) Vec2 {
	best := Vec2{1, 0}
	bestScore := math.Inf(-1)
	for k := 0; k < st.p.EscapeSamples; k++ {
		angle := 2 * math.Pi * float64(k) / float64(st.p.EscapeSamples)
		sin, cos := math.Sincos(angle)
		dir := Vec2{cos, sin}
		px := x + dir.X*st.p.EscapeDistance
		pz := z + dir.Z*st.p.EscapeDistance

		score := st.arena.ClearanceScore(px, pz, st.p.ClearanceCap)
		if st.arena.InBounds(px, pz) {
			score += st.p.InBoundsBonus
		}
		score -= st.p.CenterPull * math.Hypot(px, pz)
		score -= st.agentPenalty(px, pz, others)

		if score > bestScore {
			bestScore = score
			best = dir
		}
	}
	return best
}

// relocate grid-searches the whole arena for the teleport target
// maximizing obstacle clearance while penalizing travel distance and
// proximity to other agents. Candidates that would not strictly improve
// aggregate clearance are skipped, so a warp always lands somewhere
// more open than the stuck position.
func (st *StuckTracker) relocate(x, z float64, others []AgentPoint) Vec2 {
	he := st.arena.HalfExtent
	currentClear := st.arena.ClearanceScore(x, z, st.p.ClearanceCap)

	best := Vec2{}
	bestScore := math.Inf(-1)
	found := false

	n := st.p.RelocateGrid
	for iz := 0; iz < n; iz++ {
		for ix := 0; ix < n; ix++ {
			px := -he + (float64(ix)+0.5)*2*he/float64(n)
			pz := -he + (float64(iz)+0.5)*2*he/float64(n)

			clear := st.arena.ClearanceScore(px, pz, st.p.ClearanceCap)
			if clear <= currentClear {
				continue
			}

			score := clear
			score -= st.p.TravelPenalty * distance(x, z, px, pz)
			score -= st.agentPenalty(px, pz, others)

			if score > bestScore {
				bestScore = score
				best = Vec2{px, pz}
				found = true
			}
		}
	}

	if !found {
		// Everything scored worse; fall back to the arena center.
		return Vec2{}
	}
	return best
}

func (st *StuckTracker) agentPenalty(px, pz float64, others []AgentPoint) float64 {
	var pen float64
	for _, o := range others {
		d := distance(px, pz, o.X, o.Z)
		if d < st.p.AgentPenaltyRadius {
			pen += st.p.AgentPenalty * (st.p.AgentPenaltyRadius - d)
		}
	}
	return pen
}
