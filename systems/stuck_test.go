package systems

import "testing"

func testStuckParams() StuckParams {
	return StuckParams{
		MinDisplacement:    0.01,
		MinIntent:          0.2,
		DiagnoseAfter:      3,
		EscapeAfter:        5,
		RelocateAfter:      10,
		EscapeSamples:      8,
		EscapeDistance:     1.5,
		EscapeSpeed:        5.0,
		ClearanceCap:       4.0,
		InBoundsBonus:      10.0,
		CenterPull:         0.3,
		AgentPenalty:       2.0,
		AgentPenaltyRadius: 2.0,
		RelocateGrid:       10,
		TravelPenalty:      0.4,
	}
}

func testArena() *Arena {
	return &Arena{
		HalfExtent: 14,
		Obstacles: []Obstacle{
			{Kind: ObstacleCircle, Name: "fountain", X: 0, Z: 0, R: 2},
			{Kind: ObstacleRect, Name: "planter", X: 8, Z: 8, HalfW: 2, HalfD: 1},
		},
	}
}

func TestStuckEscalatesToEscape(t *testing.T) {
	st := NewStuckTracker(testStuckParams(), testArena())
	rec := &StuckRecord{}

	// Pinned against the fountain, trying to move.
	x, z := 2.1, 0.0
	for i := 0; i < 4; i++ {
		res, _ := st.Update(rec, x, z, x, z, 1.0, nil)
		if res != ResolutionNone {
			t.Fatalf("tick %d: resolution %v before EscapeAfter", i, res)
		}
	}

	res, v := st.Update(rec, x, z, x, z, 1.0, nil)
	if res != ResolutionEscape {
		t.Fatalf("resolution = %v at EscapeAfter, want escape", res)
	}
	if v.Len() == 0 {
		t.Fatal("escape override velocity is zero")
	}
	if rec.LastCause != CauseObstacle {
		t.Errorf("diagnosed cause = %v, want obstacle", rec.LastCause)
	}
}

func TestStuckCounterDecaysOnMovement(t *testing.T) {
	st := NewStuckTracker(testStuckParams(), testArena())
	rec := &StuckRecord{}

	for i := 0; i < 4; i++ {
		st.Update(rec, 2.1, 0, 2.1, 0, 1.0, nil)
	}
	if rec.Counter != 4 {
		t.Fatalf("counter = %d, want 4", rec.Counter)
	}

	// Real displacement decays the counter faster than it climbed.
	st.Update(rec, 2.5, 0, 2.1, 0, 1.0, nil)
	if rec.Counter != 2 {
		t.Errorf("counter = %d after movement, want 2", rec.Counter)
	}

	st.Update(rec, 2.9, 0, 2.5, 0, 1.0, nil)
	if rec.Counter != 0 || rec.LastCause != CauseNone {
		t.Errorf("counter = %d cause = %v, want clean reset", rec.Counter, rec.LastCause)
	}
}

func TestIdleAgentIsNotStuck(t *testing.T) {
	st := NewStuckTracker(testStuckParams(), testArena())
	rec := &StuckRecord{}

	// No commanded movement: standing still is fine.
	for i := 0; i < 50; i++ {
		res, _ := st.Update(rec, 5, 5, 5, 5, 0.0, nil)
		if res != ResolutionNone {
			t.Fatalf("idle agent escalated to %v", res)
		}
	}
	if rec.Counter != 0 {
		t.Errorf("idle counter = %d, want 0", rec.Counter)
	}
}

func TestEscapeBandClimbsToRelocation(t *testing.T) {
	p := testStuckParams()
	st := NewStuckTracker(p, testArena())
	rec := &StuckRecord{}

	x, z := 2.1, 0.0
	var warped bool
	var dest Vec2
	for i := 0; i < p.RelocateAfter+1; i++ {
		res, v := st.Update(rec, x, z, x, z, 1.0, nil)
		if res == ResolutionWarp {
			warped = true
			dest = v
			break
		}
	}
	if !warped {
		t.Fatal("escape band never escalated to relocation")
	}
	if rec.Warps != 1 {
		t.Errorf("warps = %d, want 1", rec.Warps)
	}
	if rec.Escapes == 0 {
		t.Error("no escapes recorded before the warp")
	}
	if rec.Counter != 0 {
		t.Errorf("counter = %d after warp, want 0", rec.Counter)
	}

	// The warp destination must be strictly more open than the stuck
	// position.
	arena := testArena()
	if arena.ClearanceScore(dest.X, dest.Z, p.ClearanceCap) <= arena.ClearanceScore(x, z, p.ClearanceCap) {
		t.Errorf("warp destination (%v,%v) is not more open than (%v,%v)", dest.X, dest.Z, x, z)
	}
	if !arena.InBounds(dest.X, dest.Z) {
		t.Errorf("warp destination (%v,%v) is out of bounds", dest.X, dest.Z)
	}
}

func TestDiagnoseCauses(t *testing.T) {
	st := NewStuckTracker(testStuckParams(), testArena())

	tests := []struct {
		name   string
		x, z   float64
		others []AgentPoint
		want   StuckCause
	}{
		{"against obstacle", 2.1, 0, nil, CauseObstacle},
		{"against boundary", 13.8, -5, nil, CauseBoundary},
		{"crowded", -8, -8, []AgentPoint{{ID: 1, X: -8.5, Z: -8}, {ID: 2, X: -8, Z: -8.5}}, CauseCrowd},
		{"open ground", -8, -8, nil, CauseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := st.diagnose(tt.x, tt.z, tt.others); got != tt.want {
				t.Errorf("diagnose(%v,%v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}
