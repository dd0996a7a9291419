package systems

import (
	"math/rand"

	"github.com/pthm-cable/chase/components"
)

// TagParams configures the tag rule engine.
type TagParams struct {
	TagDistance   float64 // a tag fires strictly inside this distance
	Cooldown      float64 // seconds a fresh tagger stays immune
	TauntDuration float64 // seconds of post-tag celebration
}

// TagRecord is one entry of the append-only tag history.
type TagRecord struct {
	Time     float64 `csv:"sim_time"`
	Tagger   int     `csv:"tagger"`
	Target   int     `csv:"target"`
	Distance float64 `csv:"distance"`
}

// TagAgent is the view of an agent the tag engine operates on. The game
// builds one per agent each tick from the ECS world.
type TagAgent struct {
	ID     int
	X, Z   float64
	Role   *components.TagRole
	Genes  *GeneState
	Memory *SpatialMemory
}

// TagEvent describes an executed tag plus its side effects.
type TagEvent struct {
	Record        TagRecord
	TaggerUnlocks []Ability // abilities newly unlocked on the tagger
	TargetUnlocks []Ability // abilities newly unlocked on the target
}

// TagContext is the explicitly owned game-state authority for the tag
// rules: who is IT, immunity, history, and the game clock. One instance
// per simulation; nothing here is global.
type TagContext struct {
	p        TagParams
	mutation MutationParams
	rng      *rand.Rand

	clock    float64
	itID     int
	prevItID int
	history  []TagRecord
}

// NewTagContext creates an uninitialized tag context.
func NewTagContext(p TagParams, mp MutationParams, rng *rand.Rand) *TagContext {
	return &TagContext{p: p, mutation: mp, rng: rng, itID: -1, prevItID: -1}
}

// Init selects a uniformly random starting IT agent.
func (t *TagContext) Init(agents []TagAgent) {
	pick := agents[t.rng.Intn(len(agents))]
	t.itID = pick.ID
	pick.Role.IsIt = true
	pick.Role.State = components.StateHunt
}

// Clock returns the running game clock in simulated seconds.
func (t *TagContext) Clock() float64 { return t.clock }

// ItID returns the id of the current IT agent.
func (t *TagContext) ItID() int { return t.itID }

// PrevItID returns the id of the agent that performed the latest tag,
// or -1 before the first tag.
func (t *TagContext) PrevItID() int { return t.prevItID }

// History returns the append-only tag history.
func (t *TagContext) History() []TagRecord { return t.history }

// Eligible reports whether the IT agent may tag the given agent right
// now. Canonical immunity rule: the previous tagger cannot be re-tagged
// until either another tag intervenes (clearing prevItID) or its
// cooldown timestamp expires, whichever comes first.
func (t *TagContext) Eligible(a TagAgent) bool {
	if a.Role.IsIt {
		return false
	}
	if a.ID == t.prevItID && t.clock < a.Role.ImmuneUntil {
		return false
	}
	return true
}

// Tick advances the game clock and executes at most one tag: the first
// eligible agent in agent-array iteration order within TagDistance of
// the IT agent. Iteration order, not nearest-distance, is the tie-break;
// this mirrors the original rules and keeps ties deterministic.
// Returns nil when no tag fired.
func (t *TagContext) Tick(dt float64, agents []TagAgent) *TagEvent {
	t.clock += dt

	var it *TagAgent
	for i := range agents {
		if agents[i].Role.IsIt {
			it = &agents[i]
			break
		}
	}
	if it == nil {
		// Cannot happen with fixed cardinality; tick is a no-op.
		return nil
	}

	for i := range agents {
		a := &agents[i]
		if a.ID == it.ID || !t.Eligible(*a) {
			continue
		}
		d := distance(it.X, it.Z, a.X, a.Z)
		if d < t.p.TagDistance {
			return t.executeTag(it, a, d)
		}
	}
	return nil
}

// executeTag transfers the IT role and applies every tag side effect:
// history, immunity, taunt, memory lessons, and gene mutations.
func (t *TagContext) executeTag(tagger, target *TagAgent, dist float64) *TagEvent {
	rec := TagRecord{
		Time:     t.clock,
		Tagger:   tagger.ID,
		Target:   target.ID,
		Distance: dist,
	}
	t.history = append(t.history, rec)

	tagger.Role.IsIt = false
	target.Role.IsIt = true
	t.itID = target.ID
	t.prevItID = tagger.ID

	tagger.Role.ImmuneUntil = t.clock + t.p.Cooldown
	tagger.Role.TauntTimer = t.p.TauntDuration
	tagger.Role.State = components.StateTaunt
	target.Role.State = components.StateHunt
	target.Role.LastTaggedBy = tagger.ID

	target.Memory.OnGotTagged(target.X, target.Z)
	tagger.Memory.OnTaggedSomeone(tagger.X, tagger.Z, target.ID)

	ev := &TagEvent{Record: rec}
	ev.TargetUnlocks = target.Genes.MutateOnTagged(t.rng, t.mutation)
	ev.TaggerUnlocks = tagger.Genes.ReinforceStrongest(t.mutation)
	return ev
}
