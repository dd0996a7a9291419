package systems

import "math"

// MemoryParams configures a SpatialMemory instance.
type MemoryParams struct {
	GridSize        int     // tiles per arena side
	HalfExtent      float64 // world half-extent covered by the grid
	TrailLength     int     // recent tiles marked as dangerous on a tag
	SampleInterval  float64 // seconds between passive survival samples
	DecayInterval   float64 // seconds between decay passes
	DecayFactor     float64 // multiplicative decay per pass, in (0,1)
	ConfidenceFloor float64 // below this, MovementBias returns zero
	LessonsPerGen   int     // lessons per generation increment
	NeighborRadius  int     // tile radius scanned by MovementBias
}

// Lesson strengths. Getting tagged is the strongest signal; the trail
// fades with recency, survival accumulates slowly.
const (
	dangerLesson   = 0.35
	trailFalloff   = 0.6
	huntLesson     = 0.30
	survivalLesson = 0.02
)

// Bias is a learned movement suggestion. Zero when the memory has not
// accumulated enough lessons to trust.
type Bias struct {
	X, Z       float64
	Confidence float64
}

type catchStat struct {
	attempts int
	catches  int
}

// SpatialMemory is a per-agent grid-based reinforcement store. Three
// parallel grids score arena tiles for danger, safety, and hunting
// success; values stay clamped to [0,1] and decay multiplicatively so
// old experience fades without vanishing mid-session.
type SpatialMemory struct {
	p MemoryParams

	danger []float64
	safety []float64
	hunt   []float64

	recent    []int // ring buffer of recently visited tile indices
	recentPos int

	targets map[int]*catchStat

	lessons     int
	sampleAccum float64
	decayAccum  float64
}

// NewSpatialMemory creates an empty memory over the configured tiling.
func NewSpatialMemory(p MemoryParams) *SpatialMemory {
	n := p.GridSize * p.GridSize
	return &SpatialMemory{
		p:       p,
		danger:  make([]float64, n),
		safety:  make([]float64, n),
		hunt:    make([]float64, n),
		recent:  make([]int, 0, p.TrailLength),
		targets: make(map[int]*catchStat),
	}
}

// tileIndex maps a world position to a grid index, clamping positions
// outside the arena onto the border tiles.
func (m *SpatialMemory) tileIndex(x, z float64) int {
	scale := float64(m.p.GridSize) / (2 * m.p.HalfExtent)
	ix := int((x + m.p.HalfExtent) * scale)
	iz := int((z + m.p.HalfExtent) * scale)
	ix = int(clamp(float64(ix), 0, float64(m.p.GridSize-1)))
	iz = int(clamp(float64(iz), 0, float64(m.p.GridSize-1)))
	return iz*m.p.GridSize + ix
}

// tileCenter returns the world-space center of a grid index.
func (m *SpatialMemory) tileCenter(idx int) (x, z float64) {
	tile := 2 * m.p.HalfExtent / float64(m.p.GridSize)
	ix := idx % m.p.GridSize
	iz := idx / m.p.GridSize
	x = -m.p.HalfExtent + (float64(ix)+0.5)*tile
	z = -m.p.HalfExtent + (float64(iz)+0.5)*tile
	return x, z
}

// OnGotTagged marks the current tile and a decaying trail of recently
// visited tiles as dangerous.
func (m *SpatialMemory) OnGotTagged(x, z float64) {
	idx := m.tileIndex(x, z)
	m.danger[idx] = clamp01(m.danger[idx] + dangerLesson)

	strength := dangerLesson * trailFalloff
	for i := 0; i < len(m.recent); i++ {
		// Walk the ring newest-first.
		j := (m.recentPos - 1 - i + len(m.recent)) % len(m.recent)
		t := m.recent[j]
		if t != idx {
			m.danger[t] = clamp01(m.danger[t] + strength)
		}
		strength *= trailFalloff
	}
	m.lessons++
}

// OnTaggedSomeone marks the current tile as hunt-favorable and records a
// successful catch against the target.
func (m *SpatialMemory) OnTaggedSomeone(x, z float64, targetID int) {
	idx := m.tileIndex(x, z)
	m.hunt[idx] = clamp01(m.hunt[idx] + huntLesson)
	s := m.stat(targetID)
	s.attempts++
	s.catches++
	m.lessons++
}

// RecordChaseAttempt notes that a hunt against targetID began. Paired
// with OnTaggedSomeone it yields a per-target catchability ratio.
func (m *SpatialMemory) RecordChaseAttempt(targetID int) {
	m.stat(targetID).attempts++
}

// Catchability returns the observed catch ratio against targetID in
// [0,1]; 0 before any attempt.
func (m *SpatialMemory) Catchability(targetID int) float64 {
	s, ok := m.targets[targetID]
	if !ok || s.attempts == 0 {
		return 0
	}
	return float64(s.catches) / float64(s.attempts)
}

func (m *SpatialMemory) stat(targetID int) *catchStat {
	s, ok := m.targets[targetID]
	if !ok {
		s = &catchStat{}
		m.targets[targetID] = s
	}
	return s
}

// Observe advances the passive sampling clock. At most once per
// SampleInterval it records the current tile in the visit ring and, when
// the agent is not IT, slowly raises the tile's safety score.
func (m *SpatialMemory) Observe(x, z, dt float64, isIt bool) {
	m.sampleAccum += dt
	if m.sampleAccum < m.p.SampleInterval {
		return
	}
	m.sampleAccum = 0

	idx := m.tileIndex(x, z)
	if len(m.recent) < m.p.TrailLength {
		m.recent = append(m.recent, idx)
		m.recentPos = len(m.recent) % m.p.TrailLength
	} else {
		m.recent[m.recentPos] = idx
		m.recentPos = (m.recentPos + 1) % m.p.TrailLength
	}

	if !isIt {
		m.safety[idx] = clamp01(m.safety[idx] + survivalLesson)
	}
}

// Decay applies multiplicative decay to all grids on a slow cadence.
func (m *SpatialMemory) Decay(dt float64) {
	m.decayAccum += dt
	if m.decayAccum < m.p.DecayInterval {
		return
	}
	m.decayAccum = 0

	for i := range m.danger {
		m.danger[i] *= m.p.DecayFactor
		m.safety[i] *= m.p.DecayFactor
		m.hunt[i] *= m.p.DecayFactor
	}
}

// Lessons returns the accumulated lesson count.
func (m *SpatialMemory) Lessons() int {
	return m.lessons
}

// Generation returns the coarse learning generation, one per
// LessonsPerGen lessons.
func (m *SpatialMemory) Generation() int {
	if m.p.LessonsPerGen <= 0 {
		return 0
	}
	return m.lessons / m.p.LessonsPerGen
}

// confidence grows with accumulated lessons, saturating after two
// generations worth of experience.
func (m *SpatialMemory) confidence() float64 {
	if m.p.LessonsPerGen <= 0 {
		return 0
	}
	return clamp01(float64(m.lessons) / float64(2*m.p.LessonsPerGen))
}

// MovementBias scans the tile neighborhood around (x,z) and returns a
// direction toward the best-scoring neighbor, scaled by confidence.
// Runners weigh safety against danger; hunters favor tiles where tags
// succeeded. Returns a zero Bias below the confidence floor.
func (m *SpatialMemory) MovementBias(x, z float64, isIt bool) Bias {
	conf := m.confidence()
	if conf < m.p.ConfidenceFloor {
		return Bias{}
	}

	center := m.tileIndex(x, z)
	cx := center % m.p.GridSize
	cz := center / m.p.GridSize

	score := func(idx int) float64 {
		if isIt {
			return m.hunt[idx] - 0.5*m.safety[idx]
		}
		return m.safety[idx] - 3*m.danger[idx]
	}

	bestIdx := center
	bestScore := score(center)
	r := m.p.NeighborRadius
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			nx := cx + dx
			nz := cz + dz
			if nx < 0 || nx >= m.p.GridSize || nz < 0 || nz >= m.p.GridSize {
				continue
			}
			idx := nz*m.p.GridSize + nx
			if s := score(idx); s > bestScore {
				bestScore = s
				bestIdx = idx
			}
		}
	}

	if bestIdx == center {
		return Bias{}
	}

	tx, tz := m.tileCenter(bestIdx)
	dx := tx - x
	dz := tz - z
	l := math.Hypot(dx, dz)
	if l < 1e-9 {
		return Bias{}
	}
	return Bias{X: dx / l * conf, Z: dz / l * conf, Confidence: conf}
}
