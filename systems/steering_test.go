package systems

import (
	"testing"

	"github.com/pthm-cable/chase/components"
)

func testSteeringParams() SteeringParams {
	return SteeringParams{
		SeekWeight:       1.0,
		IntentWeightHunt: 0.25,
		IntentWeightFlee: 0.30,
		IntentWeightRoam: 0.60,
		FleeScatter:      0, // deterministic flee direction for tests
		WanderStrength:   0.35,
		WanderFreq:       0.25,
		MemoryBiasWeight: 0.4,
		SprintBoost:      1.15,
		SeparationRadius: 1.5,
		SeparationWeight: 1.2,
		SeparationCap:    3.0,
		AvoidRadius:      2.0,
		AvoidWeight:      2.5,
		AvoidMinForce:    6.0,
		ContainWeight:    4.0,
		MaxSpeedScale:    1.5,
		HoverAltitude:    2.5,
		HoverGain:        2.0,
		HoverOsc:         0.3,
		DescendRate:      3.0,
	}
}

func testSteerAgent(id int, x, z float64, state components.State) SteerAgent {
	return SteerAgent{
		ID:      id,
		Pos:     components.Position{X: x, Z: z},
		Profile: &components.Profile{ID: id, BaseSpeed: 4.0, PanicDistance: 5.0},
		Role:    &components.TagRole{State: state, IsIt: state == components.StateHunt, LastTaggedBy: -1},
		Genes:   &GeneState{},
		Memory:  NewSpatialMemory(testMemoryParams()),
	}
}

func TestTauntFreezesMovement(t *testing.T) {
	s := NewSteering(testSteeringParams(), testArena(), 1)
	a := testSteerAgent(0, 5, 5, components.StateTaunt)
	a.Intent = components.Intent{MoveX: 1, MoveZ: 1}

	v, _ := s.Compute(a, nil, 0)
	if v.X != 0 || v.Z != 0 {
		t.Errorf("taunting agent moves: %+v", v)
	}
}

func TestFleePointsAwayFromIt(t *testing.T) {
	arena := &Arena{HalfExtent: 50} // no obstacles, no walls in play
	s := NewSteering(testSteeringParams(), arena, 1)

	a := testSteerAgent(0, 0, 0, components.StateFlee)
	others := []AgentPoint{{ID: 1, X: 5, Z: 0, IsIt: true}}

	v, _ := s.Compute(a, others, 0)
	if v.X >= 0 {
		t.Errorf("flee velocity X = %v, want negative (away from IT at +X)", v.X)
	}
}

func TestHuntSeeksNearestButNotLastTagger(t *testing.T) {
	arena := &Arena{HalfExtent: 50}
	s := NewSteering(testSteeringParams(), arena, 1)

	a := testSteerAgent(0, 0, 0, components.StateHunt)
	a.Role.LastTaggedBy = 1
	others := []AgentPoint{
		{ID: 1, X: 2, Z: 0},  // nearest, but tagged us last
		{ID: 2, X: -6, Z: 0}, // valid target
	}

	v, _ := s.Compute(a, others, 0)
	if v.X >= 0 {
		t.Errorf("hunt velocity X = %v, want negative (toward agent 2, not the retaliation target)", v.X)
	}
}

func TestContainmentPushesBackInside(t *testing.T) {
	arena := &Arena{HalfExtent: 14}
	s := NewSteering(testSteeringParams(), arena, 1)

	push := s.containment(15.0, -16.0)
	if push.X >= 0 {
		t.Errorf("containment X = %v, want negative", push.X)
	}
	if push.Z <= 0 {
		t.Errorf("containment Z = %v, want positive", push.Z)
	}
	if v := s.containment(3, -3); v.X != 0 || v.Z != 0 {
		t.Errorf("containment inside the arena = %+v, want zero", v)
	}
}

func TestAvoidanceFloorInsideObstacle(t *testing.T) {
	p := testSteeringParams()
	s := NewSteering(p, testArena(), 1)

	// Inside the fountain: repulsion must be at least the floor force.
	v := s.avoidance(0.5, 0)
	if v.Len() < p.AvoidMinForce {
		t.Errorf("avoidance force %v inside obstacle, want >= %v", v.Len(), p.AvoidMinForce)
	}
	if v.X <= 0 {
		t.Errorf("avoidance X = %v, want positive (outward)", v.X)
	}

	// Far from everything: no force.
	if v := s.avoidance(-10, -10); v.Len() != 0 {
		t.Errorf("avoidance in open space = %+v, want zero", v)
	}
}

func TestSeparationIsCapped(t *testing.T) {
	p := testSteeringParams()
	s := NewSteering(p, &Arena{HalfExtent: 50}, 1)

	a := testSteerAgent(0, 0, 0, components.StateRoam)
	others := []AgentPoint{
		{ID: 1, X: 0.01, Z: 0},
		{ID: 2, X: 0, Z: 0.01},
		{ID: 3, X: -0.01, Z: 0.01},
	}
	push := s.separation(a, others)
	if push.Len() > p.SeparationCap+1e-9 {
		t.Errorf("separation %v exceeds cap %v", push.Len(), p.SeparationCap)
	}
	if push.Len() == 0 {
		t.Error("no separation push from agents standing on top of us")
	}
}

func TestSpeedCapHolds(t *testing.T) {
	p := testSteeringParams()
	arena := &Arena{HalfExtent: 50}
	s := NewSteering(p, arena, 1)

	a := testSteerAgent(0, 0, 0, components.StateFlee)
	a.Intent = components.Intent{MoveX: 1, MoveZ: 1, Sprint: true}
	others := []AgentPoint{{ID: 1, X: 0.5, Z: 0.5, IsIt: true}}

	v, _ := s.Compute(a, others, 0)
	cap := a.Profile.BaseSpeed * p.MaxSpeedScale * a.Genes.SpeedMultiplier()
	if v.Len() > cap+1e-9 {
		t.Errorf("speed %v exceeds cap %v", v.Len(), cap)
	}
}

func TestVerticalHoverAndDescent(t *testing.T) {
	p := testSteeringParams()
	s := NewSteering(p, testArena(), 1)

	a := testSteerAgent(0, 5, 5, components.StateFlee)
	a.Genes.genes[GeneWings] = 0.9
	a.Genes.Activate(AbilityFlight)

	// Below hover altitude with flight active: climb.
	if vy := s.vertical(a); vy <= 0 {
		t.Errorf("vertical = %v at ground with flight active, want positive", vy)
	}

	// Flight over, still airborne: forced descent.
	b := testSteerAgent(1, 5, 5, components.StateFlee)
	b.Pos.Y = 2.0
	if vy := s.vertical(b); vy != -p.DescendRate {
		t.Errorf("vertical = %v after flight expiry, want %v", vy, -p.DescendRate)
	}

	// Grounded, no flight: stay put.
	c := testSteerAgent(2, 5, 5, components.StateFlee)
	if vy := s.vertical(c); vy != 0 {
		t.Errorf("vertical = %v on the ground, want 0", vy)
	}
}
