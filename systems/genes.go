package systems

import "math/rand"

// Gene identifies a mutable behavioral trait, each held in [0,1].
type Gene uint8

const (
	GeneDash Gene = iota
	GeneWings
	GeneJuke
	NumGenes
)

// String returns the gene name used in logs.
func (g Gene) String() string {
	switch g {
	case GeneDash:
		return "dash"
	case GeneWings:
		return "wings"
	case GeneJuke:
		return "juke"
	default:
		return "unknown"
	}
}

// Ability identifies an unlockable ability. Closed set: adding an
// ability means extending this enum and abilityTable, nothing else.
type Ability uint8

const (
	AbilityDash Ability = iota
	AbilityFlight
	AbilityJuke
	NumAbilities
)

// String returns the ability name used in logs.
func (a Ability) String() string {
	switch a {
	case AbilityDash:
		return "dash"
	case AbilityFlight:
		return "flight"
	case AbilityJuke:
		return "juke"
	default:
		return "unknown"
	}
}

// Situation is the input to the ability activation policy.
type Situation struct {
	IsIt         bool
	DistanceToIT float64 // distance to the IT agent (0 when IsIt)
	InCorner     bool
}

// AbilitySpec is one row of the ability data table.
type AbilitySpec struct {
	Gene      Gene
	Threshold float64 // gene value required to use the ability
	Duration  float64 // seconds active
	Cooldown  float64 // seconds after expiry before reuse
	Wants     func(s Situation) bool
}

// abilityTable drives DecideAbility in declaration order.
var abilityTable = [NumAbilities]AbilitySpec{
	AbilityDash: {
		Gene:      GeneDash,
		Threshold: 0.5,
		Duration:  1.2,
		Cooldown:  6.0,
		Wants: func(s Situation) bool {
			// Close the gap when hunting, open it when hunted.
			return s.DistanceToIT < 4.0
		},
	},
	AbilityFlight: {
		Gene:      GeneWings,
		Threshold: 0.7,
		Duration:  3.0,
		Cooldown:  12.0,
		Wants: func(s Situation) bool {
			return !s.IsIt && (s.InCorner || s.DistanceToIT < 2.5)
		},
	},
	AbilityJuke: {
		Gene:      GeneJuke,
		Threshold: 0.6,
		Duration:  0.5,
		Cooldown:  4.0,
		Wants: func(s Situation) bool {
			return !s.IsIt && s.DistanceToIT < 1.8
		},
	},
}

// AbilityTable exposes a copy of the spec row for an ability.
func AbilityTable(a Ability) AbilitySpec {
	return abilityTable[a]
}

// MutationParams configures gene mutation magnitudes.
type MutationParams struct {
	TaggedSigma     float64 // per-gene sigma of the getting-tagged mutation
	TaggedBias      float64 // upward bias applied to one random gene
	ReinforceAmount float64 // boost to the tagger's strongest gene
	BackgroundSigma float64 // sigma of the slow universal mutation
}

// GeneState holds one agent's trait vector and ability timers.
type GeneState struct {
	genes    [NumGenes]float64
	active   [NumAbilities]float64
	cooldown [NumAbilities]float64
	unlocked [NumAbilities]bool

	mutations int
}

// NewGeneState seeds each gene with a small random value plus the
// personality bias for that gene.
func NewGeneState(rng *rand.Rand, bias [NumGenes]float64) *GeneState {
	gs := &GeneState{}
	for g := Gene(0); g < NumGenes; g++ {
		gs.genes[g] = clamp01(rng.Float64()*0.15 + bias[g])
	}
	return gs
}

// Gene returns the current value of a gene.
func (gs *GeneState) Gene(g Gene) float64 {
	return gs.genes[g]
}

// Mutations returns the monotonically increasing mutation counter.
func (gs *GeneState) Mutations() int {
	return gs.mutations
}

// StrongestGene returns the gene with the highest current value.
func (gs *GeneState) StrongestGene() Gene {
	best := Gene(0)
	for g := Gene(1); g < NumGenes; g++ {
		if gs.genes[g] > gs.genes[best] {
			best = g
		}
	}
	return best
}

// MutateOnTagged applies the strong multi-gene mutation triggered by
// being tagged: gaussian jitter on every gene plus an upward bias on one
// random gene. Returns any abilities whose thresholds were crossed for
// the first time.
func (gs *GeneState) MutateOnTagged(rng *rand.Rand, p MutationParams) []Ability {
	for g := Gene(0); g < NumGenes; g++ {
		gs.genes[g] = clamp01(gs.genes[g] + rng.NormFloat64()*p.TaggedSigma)
	}
	lucky := Gene(rng.Intn(int(NumGenes)))
	gs.genes[lucky] = clamp01(gs.genes[lucky] + p.TaggedBias)
	gs.mutations++
	return gs.collectUnlocks()
}

// ReinforceStrongest applies the small post-tag reward to the tagger's
// strongest gene.
func (gs *GeneState) ReinforceStrongest(p MutationParams) []Ability {
	g := gs.StrongestGene()
	gs.genes[g] = clamp01(gs.genes[g] + p.ReinforceAmount)
	gs.mutations++
	return gs.collectUnlocks()
}

// MutateBackground applies the slow universal drift to one random gene.
func (gs *GeneState) MutateBackground(rng *rand.Rand, p MutationParams) []Ability {
	g := Gene(rng.Intn(int(NumGenes)))
	gs.genes[g] = clamp01(gs.genes[g] + rng.NormFloat64()*p.BackgroundSigma)
	gs.mutations++
	return gs.collectUnlocks()
}

// collectUnlocks records first-time threshold crossings. Unlocking is an
// event for external notification only; usability is always re-checked
// against the table.
func (gs *GeneState) collectUnlocks() []Ability {
	var out []Ability
	for a := Ability(0); a < NumAbilities; a++ {
		spec := &abilityTable[a]
		if !gs.unlocked[a] && gs.genes[spec.Gene] >= spec.Threshold {
			gs.unlocked[a] = true
			out = append(out, a)
		}
	}
	return out
}

// Tick advances ability timers. When an active window expires its
// cooldown window begins.
func (gs *GeneState) Tick(dt float64) {
	for a := Ability(0); a < NumAbilities; a++ {
		if gs.active[a] > 0 {
			gs.active[a] -= dt
			if gs.active[a] <= 0 {
				gs.active[a] = 0
				gs.cooldown[a] = abilityTable[a].Cooldown
			}
		} else if gs.cooldown[a] > 0 {
			gs.cooldown[a] -= dt
			if gs.cooldown[a] < 0 {
				gs.cooldown[a] = 0
			}
		}
	}
}

// IsActive reports whether an ability's active window is running.
func (gs *GeneState) IsActive(a Ability) bool {
	return gs.active[a] > 0
}

// CanActivate reports whether an ability is currently usable: gene at or
// above threshold, not on cooldown, not already active.
func (gs *GeneState) CanActivate(a Ability) bool {
	spec := &abilityTable[a]
	return gs.genes[spec.Gene] >= spec.Threshold && gs.cooldown[a] == 0 && gs.active[a] == 0
}

// Activate starts an ability's active window. Returns false without side
// effects when the ability is not usable.
func (gs *GeneState) Activate(a Ability) bool {
	if !gs.CanActivate(a) {
		return false
	}
	gs.active[a] = abilityTable[a].Duration
	return true
}

// DecideAbility walks the ability table in order and returns the first
// usable ability whose situational predicate is satisfied.
func (gs *GeneState) DecideAbility(s Situation) (Ability, bool) {
	for a := Ability(0); a < NumAbilities; a++ {
		if gs.CanActivate(a) && abilityTable[a].Wants(s) {
			return a, true
		}
	}
	return 0, false
}

// SpeedMultiplier returns the factor applied to the final combined
// horizontal velocity. Only dash scales speed; flight and juke shape
// motion elsewhere.
func (gs *GeneState) SpeedMultiplier() float64 {
	if gs.IsActive(AbilityDash) {
		return 1 + 0.8*gs.genes[GeneDash]
	}
	return 1
}
