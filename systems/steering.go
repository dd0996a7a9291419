package systems

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/chase/components"
)

// SteeringParams holds the force-composition weights. All state vectors
// and corrections are summed, never arbitrated: agents always have some
// net velocity, and the obstacle/boundary terms are scaled to dominate
// when penetration is severe.
type SteeringParams struct {
	SeekWeight       float64 // HUNT direct-seek dominance
	IntentWeightHunt float64 // external intent blend while hunting
	IntentWeightFlee float64
	IntentWeightRoam float64
	FleeScatter      float64 // max per-agent angular scatter in radians
	WanderStrength   float64 // idle oscillation amplitude, fraction of base speed
	WanderFreq       float64 // idle oscillation frequency in Hz
	MemoryBiasWeight float64 // learned-bias contribution, fraction of base speed
	SprintBoost      float64 // speed factor while the intent sprint flag is set

	SeparationRadius float64 // personal-space radius
	SeparationWeight float64
	SeparationCap    float64 // cap on the summed separation speed

	AvoidRadius   float64 // obstacle clearance below which repulsion applies
	AvoidWeight   float64 // penetration-squared gain
	AvoidMinForce float64 // floor force when inside an obstacle

	ContainWeight float64 // proportional boundary pushback gain
	MaxSpeedScale float64 // hard cap as a multiple of base speed

	HoverAltitude float64 // flight ability target altitude
	HoverGain     float64 // proportional climb gain
	HoverOsc      float64 // hover bobbing amplitude
	DescendRate   float64 // forced descent speed after flight expiry
}

// AgentPoint is the position of another agent as seen by steering.
type AgentPoint struct {
	ID   int
	X, Z float64
	IsIt bool
}

// SteerAgent is the full per-agent view steering computes from.
type SteerAgent struct {
	ID      int
	Pos     components.Position
	Profile *components.Profile
	Role    *components.TagRole
	Intent  components.Intent
	Genes   *GeneState
	Memory  *SpatialMemory
}

// Steering computes one velocity vector per agent per tick from the
// active behavioral state, learned bias, separation, obstacle avoidance,
// and boundary containment.
type Steering struct {
	p     SteeringParams
	arena *Arena
	noise opensimplex.Noise
}

// NewSteering creates a steering engine over the shared arena geometry.
// The noise seed drives the ROAM wander oscillation.
func NewSteering(p SteeringParams, arena *Arena, seed int64) *Steering {
	return &Steering{p: p, arena: arena, noise: opensimplex.New(seed)}
}

// scatterAngle returns the fixed angular bias for a fleeing agent,
// derived from its id so the five agents fan out over distinct escape
// corridors instead of converging on one.
func (s *Steering) scatterAngle(id int) float64 {
	return (float64(id)*0.5 - 1.0) * s.p.FleeScatter
}

func rotate(v Vec2, angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Z*sin, v.X*sin + v.Z*cos}
}

// Compute returns the horizontal velocity and vertical velocity for one
// agent. others must hold every other live agent. now is the game clock.
func (s *Steering) Compute(a SteerAgent, others []AgentPoint, now float64) (Vec2, float64) {
	if a.Role.State == components.StateTaunt {
		// Celebration: no movement contribution at all.
		return Vec2{}, s.vertical(a)
	}

	base := a.Profile.BaseSpeed
	speed := base
	if a.Intent.Sprint {
		speed *= s.p.SprintBoost
	}

	var v Vec2
	intent := Vec2{a.Intent.MoveX, a.Intent.MoveZ}

	switch a.Role.State {
	case components.StateHunt:
		if tgt, ok := s.pickTarget(a, others); ok {
			seek := Vec2{tgt.X - a.Pos.X, tgt.Z - a.Pos.Z}.Normalized()
			v = seek.Scale(speed * s.p.SeekWeight)
		}
		v = v.Add(intent.Scale(speed * s.p.IntentWeightHunt))

	case components.StateFlee:
		if it, ok := findIt(others); ok {
			away := Vec2{a.Pos.X - it.X, a.Pos.Z - it.Z}.Normalized()
			away = rotate(away, s.scatterAngle(a.ID))
			v = away.Scale(speed)
		}
		v = v.Add(intent.Scale(speed * s.p.IntentWeightFlee))

	default: // ROAM
		v = intent.Scale(speed * s.p.IntentWeightRoam)
		v = v.Add(s.wander(a.ID, now).Scale(base * s.p.WanderStrength))
	}

	// Learned bias, already confidence-gated by the memory.
	bias := a.Memory.MovementBias(a.Pos.X, a.Pos.Z, a.Role.IsIt)
	v = v.Add(Vec2{bias.X, bias.Z}.Scale(base * s.p.MemoryBiasWeight))

	v = v.Add(s.separation(a, others))
	v = v.Add(s.avoidance(a.Pos.X, a.Pos.Z))
	v = v.Add(s.containment(a.Pos.X, a.Pos.Z))

	if a.Genes.IsActive(AbilityJuke) {
		// Sharp sideways jink while the juke window runs.
		perp := Vec2{-v.Z, v.X}.Normalized()
		sign := 1.0
		if s.noise.Eval2(now*3.0, float64(a.ID)*17.0) < 0 {
			sign = -1
		}
		v = v.Add(perp.Scale(base * 0.8 * sign))
	}

	// Ability multipliers scale the final combined horizontal velocity,
	// never an individual component.
	mult := a.Genes.SpeedMultiplier()
	v = v.Scale(mult)
	v = v.ClampLen(base * s.p.MaxSpeedScale * mult)

	return v, s.vertical(a)
}

// pickTarget returns the nearest valid hunt target, excluding the agent
// that most recently tagged the hunter (no instant retaliation loops).
// Distances are softened by learned catchability so the hunter slightly
// prefers targets it has caught before.
func (s *Steering) pickTarget(a SteerAgent, others []AgentPoint) (AgentPoint, bool) {
	best := -1
	bestScore := math.Inf(1)
	for i, o := range others {
		if o.ID == a.Role.LastTaggedBy {
			continue
		}
		d := distance(a.Pos.X, a.Pos.Z, o.X, o.Z)
		score := d * (1 - 0.3*a.Memory.Catchability(o.ID))
		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return AgentPoint{}, false
	}
	return others[best], true
}

func findIt(others []AgentPoint) (AgentPoint, bool) {
	for _, o := range others {
		if o.IsIt {
			return o, true
		}
	}
	return AgentPoint{}, false
}

// wander samples smooth noise at a per-id phase offset, producing the
// idle oscillation that keeps agents alive-looking with zero intent.
func (s *Steering) wander(id int, now float64) Vec2 {
	phase := float64(id) * 37.0
	t := now * s.p.WanderFreq
	return Vec2{
		X: s.noise.Eval2(t, phase),
		Z: s.noise.Eval2(t, phase+101.0),
	}
}

// separation sums capped inverse-distance pushes from agents inside the
// personal-space radius.
func (s *Steering) separation(a SteerAgent, others []AgentPoint) Vec2 {
	var push Vec2
	for _, o := range others {
		d := distance(a.Pos.X, a.Pos.Z, o.X, o.Z)
		if d >= s.p.SeparationRadius || d < 1e-9 {
			continue
		}
		dir := Vec2{a.Pos.X - o.X, a.Pos.Z - o.Z}.Normalized()
		push = push.Add(dir.Scale(s.p.SeparationWeight / d))
	}
	return push.ClampLen(s.p.SeparationCap)
}

// avoidance sums repulsion from every obstacle inside the avoidance
// radius. Force grows with penetration squared and is floored once the
// agent is inside an obstacle, guaranteeing escape from deep clipping.
func (s *Steering) avoidance(x, z float64) Vec2 {
	var out Vec2
	for i := range s.arena.Obstacles {
		o := &s.arena.Obstacles[i]
		c := o.Clearance(x, z)
		if c >= s.p.AvoidRadius {
			continue
		}
		dir := Vec2{x - o.X, z - o.Z}.Normalized()
		if dir.Len() < 0.5 {
			// Dead center of an obstacle; any direction beats none.
			dir = Vec2{1, 0}
		}
		pen := s.p.AvoidRadius - c
		force := s.p.AvoidWeight * pen * pen
		if c < 0 && force < s.p.AvoidMinForce {
			force = s.p.AvoidMinForce
		}
		out = out.Add(dir.Scale(force))
	}
	return out
}

// containment pushes back proportionally once the agent exceeds the
// arena half-extent. The integrator additionally hard-clamps position.
func (s *Steering) containment(x, z float64) Vec2 {
	var v Vec2
	he := s.arena.HalfExtent
	if x > he {
		v.X = -(x - he) * s.p.ContainWeight
	} else if x < -he {
		v.X = -(x + he) * s.p.ContainWeight
	}
	if z > he {
		v.Z = -(z - he) * s.p.ContainWeight
	} else if z < -he {
		v.Z = -(z + he) * s.p.ContainWeight
	}
	return v
}

// vertical handles altitude: hover with a gentle bob while flight is
// active, forced descent afterwards, hard ground adherence otherwise.
func (s *Steering) vertical(a SteerAgent) float64 {
	if a.Genes.IsActive(AbilityFlight) {
		bob := s.noise.Eval2(float64(a.ID)*3.3, a.Pos.Y) * s.p.HoverOsc
		return (s.p.HoverAltitude + bob - a.Pos.Y) * s.p.HoverGain
	}
	if a.Pos.Y > 0 {
		return -s.p.DescendRate
	}
	return 0
}
