package systems

import (
	"math"
	"testing"
)

func TestDangerStaysClamped(t *testing.T) {
	m := NewSpatialMemory(testMemoryParams())
	for i := 0; i < 100; i++ {
		m.OnGotTagged(0, 0)
	}
	for i, v := range m.danger {
		if v < 0 || v > 1 {
			t.Fatalf("danger[%d] = %v, want [0,1]", i, v)
		}
	}
	idx := m.tileIndex(0, 0)
	if m.danger[idx] != 1.0 {
		t.Errorf("danger at tag tile = %v, want saturated at 1", m.danger[idx])
	}
}

func TestFreshMemoryGivesZeroBias(t *testing.T) {
	m := NewSpatialMemory(testMemoryParams())
	b := m.MovementBias(3, -4, false)
	if b.X != 0 || b.Z != 0 || b.Confidence != 0 {
		t.Errorf("fresh memory bias = %+v, want zero", b)
	}
}

func TestBiasPointsAwayFromDanger(t *testing.T) {
	p := testMemoryParams()
	m := NewSpatialMemory(p)

	// Saturate danger on the tile at (10,10) and build confidence past
	// the floor.
	for i := 0; i < 2*p.LessonsPerGen; i++ {
		m.OnGotTagged(10, 10)
	}

	b := m.MovementBias(10, 10, false)
	if b.Confidence == 0 {
		t.Fatal("confidence still zero after many lessons")
	}
	if b.X == 0 && b.Z == 0 {
		t.Fatal("no bias out of a saturated danger tile")
	}

	// The suggested direction must not point back toward the danger
	// tile's own center.
	if b.X > 0 && b.Z > 0 {
		// Bias toward increasing x and z would walk deeper into the
		// corner holding the danger tile.
		tx, tz := m.tileCenter(m.tileIndex(10, 10))
		dot := b.X*(tx-10) + b.Z*(tz-10)
		if dot > 0 {
			t.Errorf("bias %+v points toward the danger tile", b)
		}
	}
}

func TestHunterBiasFavorsCatchTiles(t *testing.T) {
	p := testMemoryParams()
	m := NewSpatialMemory(p)

	for i := 0; i < 2*p.LessonsPerGen; i++ {
		m.OnTaggedSomeone(5, 5, 1)
	}

	// Standing one tile away as IT, the bias should lean toward the
	// successful-hunt tile.
	b := m.MovementBias(5-2*p.HalfExtent/float64(p.GridSize), 5, true)
	if b.X <= 0 {
		t.Errorf("hunter bias X = %v, want > 0 (toward hunt tile)", b.X)
	}
}

func TestDecayFades(t *testing.T) {
	p := testMemoryParams()
	m := NewSpatialMemory(p)
	m.OnGotTagged(0, 0)
	idx := m.tileIndex(0, 0)
	before := m.danger[idx]

	m.Decay(p.DecayInterval + 0.001)
	if m.danger[idx] >= before {
		t.Errorf("danger did not decay: %v -> %v", before, m.danger[idx])
	}
	if math.Abs(m.danger[idx]-before*p.DecayFactor) > 1e-12 {
		t.Errorf("decay factor wrong: %v -> %v", before, m.danger[idx])
	}

	// Sub-interval time must not decay.
	v := m.danger[idx]
	m.Decay(p.DecayInterval / 2)
	if m.danger[idx] != v {
		t.Error("decay ran before the interval elapsed")
	}
}

func TestObserveSamplesAtInterval(t *testing.T) {
	p := testMemoryParams()
	m := NewSpatialMemory(p)

	// 30 ticks of 1/60s is half the sample interval: nothing recorded.
	for i := 0; i < 30; i++ {
		m.Observe(0, 0, 1.0/60.0, false)
	}
	if len(m.recent) != 0 {
		t.Fatalf("recorded %d samples before the interval elapsed", len(m.recent))
	}

	for i := 0; i < 31; i++ {
		m.Observe(0, 0, 1.0/60.0, false)
	}
	if len(m.recent) != 1 {
		t.Fatalf("recorded %d samples, want 1", len(m.recent))
	}

	idx := m.tileIndex(0, 0)
	if m.safety[idx] == 0 {
		t.Error("survival sample did not raise safety")
	}
}

func TestCatchability(t *testing.T) {
	m := NewSpatialMemory(testMemoryParams())
	if m.Catchability(3) != 0 {
		t.Error("catchability nonzero before any attempt")
	}

	m.RecordChaseAttempt(3)
	m.RecordChaseAttempt(3)
	m.RecordChaseAttempt(3)
	m.OnTaggedSomeone(0, 0, 3)

	got := m.Catchability(3)
	want := 1.0 / 4.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("catchability = %v, want %v", got, want)
	}
}

func TestGenerationAdvancesWithLessons(t *testing.T) {
	p := testMemoryParams()
	m := NewSpatialMemory(p)
	if m.Generation() != 0 {
		t.Fatal("fresh memory not at generation 0")
	}
	for i := 0; i < p.LessonsPerGen; i++ {
		m.OnGotTagged(0, 0)
	}
	if m.Generation() != 1 {
		t.Errorf("generation = %d after %d lessons, want 1", m.Generation(), p.LessonsPerGen)
	}
}
