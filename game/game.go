// Package game wires the simulation together: the ECS world holding the
// five agents, the tag rules, steering, per-agent learning state, stuck
// recovery, the external intent boundary, and telemetry. One Game per
// run; every piece of state is owned here explicitly.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/chase/components"
	"github.com/pthm-cable/chase/config"
	"github.com/pthm-cable/chase/intent"
	"github.com/pthm-cable/chase/systems"
	"github.com/pthm-cable/chase/telemetry"
)

// NumAgents is the fixed cast size. The tag rules assume exactly five.
const NumAgents = 5

// Options configures a game instance.
type Options struct {
	Config         *config.Config
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	StepsPerUpdate int
	IntentEnabled  bool
	IntentURL      string
}

// agentView bundles per-tick component pointers for one agent. The cast
// is fixed, so these stay valid between structural queries.
type agentView struct {
	entity  ecs.Entity
	pos     *components.Position
	vel     *components.Velocity
	prev    *components.PrevPosition
	profile *components.Profile
	role    *components.TagRole
	intent  *components.Intent
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	agentMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.PrevPosition,
		components.Profile,
		components.TagRole,
		components.Intent,
	]
	agentFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.PrevPosition,
		components.Profile,
		components.TagRole,
		components.Intent,
	]

	views [NumAgents]agentView

	// Per-agent learning state lives outside the ECS, keyed by agent id.
	memories map[int]*systems.SpatialMemory
	genes    map[int]*systems.GeneState
	stuck    map[int]*systems.StuckRecord
	lastRes  map[int]systems.StuckResolution

	arena        *systems.Arena
	tagCtx       *systems.TagContext
	steering     *systems.Steering
	stuckTracker *systems.StuckTracker

	collector *telemetry.Collector
	output    *telemetry.OutputManager
	runner    *intent.Runner

	dt             float64
	tick           int64
	accumulator    float64
	stepsPerUpdate int
	logStats       bool

	nextBackgroundMut float64
}

// NewGameWithOptions creates a fully wired game.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	if len(cfg.Agents) != NumAgents {
		return nil, fmt.Errorf("game: exactly %d agents required, got %d", NumAgents, len(cfg.Agents))
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		memories:       make(map[int]*systems.SpatialMemory, NumAgents),
		genes:          make(map[int]*systems.GeneState, NumAgents),
		stuck:          make(map[int]*systems.StuckRecord, NumAgents),
		lastRes:        make(map[int]systems.StuckResolution, NumAgents),
		dt:             cfg.Physics.DT,
		stepsPerUpdate: stepsPerUpdate,
		logStats:       opts.LogStats,
	}

	g.world = ecs.NewWorld()
	g.agentMapper = ecs.NewMap6[
		components.Position,
		components.Velocity,
		components.PrevPosition,
		components.Profile,
		components.TagRole,
		components.Intent,
	](g.world)
	g.agentFilter = ecs.NewFilter6[
		components.Position,
		components.Velocity,
		components.PrevPosition,
		components.Profile,
		components.TagRole,
		components.Intent,
	](g.world)

	g.arena = buildArena(cfg)
	g.tagCtx = systems.NewTagContext(tagParams(cfg), mutationParams(cfg), g.rng)
	g.steering = systems.NewSteering(steeringParams(cfg), g.arena, opts.Seed)
	g.stuckTracker = systems.NewStuckTracker(stuckParams(cfg), g.arena)
	g.collector = telemetry.NewCollector(statsWindow, g.dt)
	g.nextBackgroundMut = cfg.Mutation.BackgroundInterval

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		g.output.Close()
		return nil, err
	}

	if opts.IntentEnabled {
		url := opts.IntentURL
		if url == "" {
			url = cfg.Intent.URL
		}
		src := intent.NewWSSource(url, time.Duration(cfg.Intent.Timeout*float64(time.Second)))
		g.runner = intent.NewRunner(src, time.Duration(cfg.Intent.Cadence*float64(time.Second)))
	}

	g.spawnAgents()
	g.rebuildViews()
	g.tagCtx.Init(g.tagAgents())

	return g, nil
}

// spawnAgents creates the five configured agents spread evenly around
// the arena center, outside any obstacle.
func (g *Game) spawnAgents() {
	he := g.cfg.Arena.HalfExtent
	for i, ac := range g.cfg.Agents {
		x := (g.rng.Float64()*2 - 1) * he * 0.6
		z := (g.rng.Float64()*2 - 1) * he * 0.6
		for tries := 0; tries < 32; tries++ {
			if _, c := g.arena.NearestObstacle(x, z); c > 1.0 {
				break
			}
			x = (g.rng.Float64()*2 - 1) * he * 0.6
			z = (g.rng.Float64()*2 - 1) * he * 0.6
		}

		pos := components.Position{X: x, Z: z}
		vel := components.Velocity{}
		prev := components.PrevPosition{X: x, Z: z}
		profile := components.Profile{
			ID:            i,
			Name:          ac.Name,
			Color:         ac.Color,
			BaseSpeed:     ac.BaseSpeed,
			PanicDistance: ac.PanicDistance,
			Aggression:    ac.Aggression,
			Risk:          ac.Risk,
			Playfulness:   ac.Playfulness,
		}
		role := components.TagRole{State: components.StateRoam, LastTaggedBy: -1}
		in := components.Intent{}

		g.agentMapper.NewEntity(&pos, &vel, &prev, &profile, &role, &in)

		g.memories[i] = systems.NewSpatialMemory(memoryParams(g.cfg))
		g.genes[i] = systems.NewGeneState(g.rng, geneBias(ac))
		g.stuck[i] = &systems.StuckRecord{}
	}
}

// rebuildViews refreshes the per-agent component pointers from the ECS.
func (g *Game) rebuildViews() {
	query := g.agentFilter.Query()
	for query.Next() {
		pos, vel, prev, profile, role, in := query.Get()
		g.views[profile.ID] = agentView{
			entity:  query.Entity(),
			pos:     pos,
			vel:     vel,
			prev:    prev,
			profile: profile,
			role:    role,
			intent:  in,
		}
	}
}

// tagAgents builds the tag engine's view of the cast in id order.
func (g *Game) tagAgents() []systems.TagAgent {
	out := make([]systems.TagAgent, NumAgents)
	for i := range g.views {
		v := &g.views[i]
		out[i] = systems.TagAgent{
			ID:     v.profile.ID,
			X:      v.pos.X,
			Z:      v.pos.Z,
			Role:   v.role,
			Genes:  g.genes[v.profile.ID],
			Memory: g.memories[v.profile.ID],
		}
	}
	return out
}

// StartIntent launches the external intent runner, if enabled.
func (g *Game) StartIntent(ctx context.Context) {
	if g.runner != nil {
		g.runner.Start(ctx)
	}
}

// Advance accumulates real elapsed seconds and steps the fixed-timestep
// simulation as many times as fit.
func (g *Game) Advance(elapsed float64) {
	g.accumulator += elapsed
	for g.accumulator >= g.dt {
		g.step()
		g.accumulator -= g.dt
	}
}

// UpdateHeadless runs StepsPerUpdate simulation steps as fast as possible.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.tick
}

// Clock returns the game clock in simulated seconds.
func (g *Game) Clock() float64 {
	return g.tagCtx.Clock()
}

// ItID returns the id of the current IT agent.
func (g *Game) ItID() int {
	return g.tagCtx.ItID()
}

// TagHistory returns the append-only tag ledger.
func (g *Game) TagHistory() []systems.TagRecord {
	return g.tagCtx.History()
}

// Scores returns the per-agent survival scores in id order.
func (g *Game) Scores() []float64 {
	out := make([]float64, NumAgents)
	for i := range g.views {
		out[i] = g.views[i].role.Score
	}
	return out
}

// StuckTotals returns the cumulative stuck-recovery counts across the
// cast for the whole run.
func (g *Game) StuckTotals() (escapes, warps int) {
	for i := 0; i < NumAgents; i++ {
		escapes += g.stuck[i].Escapes
		warps += g.stuck[i].Warps
	}
	return escapes, warps
}

// Close flushes telemetry and closes all outputs.
func (g *Game) Close() error {
	g.flushWindow()
	var err error
	if g.output != nil {
		err = g.output.Close()
	}
	if g.runner != nil {
		if werr := g.runner.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
