package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/chase/components"
	"github.com/pthm-cable/chase/intent"
	"github.com/pthm-cable/chase/systems"
	"github.com/pthm-cable/chase/telemetry"
)

// step runs a single fixed-timestep tick. The pipeline order matters:
// intents land before the tag check, state recomputation sees the
// post-tag roles, and stuck recovery overrides steering output before
// integration.
func (g *Game) step() {
	g.applyHints()
	g.updateTag()
	g.updateBackgroundMutation()
	g.updateStates()
	g.updateAbilities()
	g.updateMovement()
	g.updateLearning()
	g.flushTelemetry()
	g.publishSnapshot()

	g.tick++
}

// applyHints folds the most recent external intent batch into the
// agents' intent components. Absent or dropped entries leave the
// previous intent in place.
func (g *Game) applyHints() {
	if g.runner == nil {
		return
	}
	for _, h := range g.runner.Poll() {
		if h.ID < 0 || h.ID >= NumAgents {
			continue
		}
		v := &g.views[h.ID]
		v.intent.MoveX = h.MoveX
		v.intent.MoveZ = h.MoveZ
		v.intent.Sprint = h.Sprint
	}
}

// updateTag advances the game clock and executes at most one tag.
func (g *Game) updateTag() {
	ev := g.tagCtx.Tick(g.dt, g.tagAgents())
	if ev == nil {
		return
	}

	rec := ev.Record
	g.collector.RecordTag(rec)
	if err := g.output.WriteTag(rec); err != nil {
		slog.Warn("tag record write failed", "error", err)
	}
	g.writeEvent(telemetry.Event{
		Type:   telemetry.EventTag,
		Tick:   g.tick,
		Time:   rec.Time,
		Agent:  rec.Tagger,
		Target: rec.Target,
	})

	slog.Info("tag",
		"time", rec.Time,
		"tagger", g.views[rec.Tagger].profile.Name,
		"target", g.views[rec.Target].profile.Name,
		"distance", rec.Distance,
	)

	g.recordUnlocks(rec.Target, ev.TargetUnlocks)
	g.recordUnlocks(rec.Tagger, ev.TaggerUnlocks)
}

func (g *Game) recordUnlocks(agentID int, unlocks []systems.Ability) {
	for _, a := range unlocks {
		g.collector.RecordUnlock()
		g.writeEvent(telemetry.Event{
			Type:    telemetry.EventUnlock,
			Tick:    g.tick,
			Time:    g.tagCtx.Clock(),
			Agent:   agentID,
			Ability: a.String(),
		})
		slog.Info("ability unlocked",
			"agent", g.views[agentID].profile.Name,
			"ability", a.String(),
		)
	}
}

// updateBackgroundMutation applies the slow universal gene drift to the
// whole cast on its configured interval.
func (g *Game) updateBackgroundMutation() {
	if g.cfg.Mutation.BackgroundInterval <= 0 || g.tagCtx.Clock() < g.nextBackgroundMut {
		return
	}
	g.nextBackgroundMut += g.cfg.Mutation.BackgroundInterval

	mp := mutationParams(g.cfg)
	for id := 0; id < NumAgents; id++ {
		unlocks := g.genes[id].MutateBackground(g.rng, mp)
		g.recordUnlocks(id, unlocks)
	}
	g.collector.RecordBackgroundMutation()
}

// updateStates recomputes every agent's behavioral state. TAUNT is
// timer-driven and frozen in place until it expires.
func (g *Game) updateStates() {
	it := &g.views[g.tagCtx.ItID()]

	for i := range g.views {
		v := &g.views[i]

		if v.role.TauntTimer > 0 {
			v.role.TauntTimer -= g.dt
			if v.role.TauntTimer > 0 {
				v.role.State = components.StateTaunt
				continue
			}
			v.role.TauntTimer = 0
		}

		d := math.Hypot(v.pos.X-it.pos.X, v.pos.Z-it.pos.Z)
		v.role.State = systems.NextState(v.role.IsIt, d, v.profile.PanicDistance)
	}
}

// updateAbilities lets each agent's gene state decide and activate at
// most one ability per tick.
func (g *Game) updateAbilities() {
	it := &g.views[g.tagCtx.ItID()]
	margin := g.cfg.Arena.CornerMargin
	he := g.arena.HalfExtent

	for i := range g.views {
		v := &g.views[i]
		if v.role.State == components.StateTaunt {
			continue
		}

		sit := systems.Situation{
			IsIt:         v.role.IsIt,
			DistanceToIT: math.Hypot(v.pos.X-it.pos.X, v.pos.Z-it.pos.Z),
			InCorner:     he-math.Abs(v.pos.X) < margin && he-math.Abs(v.pos.Z) < margin,
		}

		gs := g.genes[i]
		if a, ok := gs.DecideAbility(sit); ok && gs.Activate(a) {
			g.collector.RecordAbility(a)
			g.writeEvent(telemetry.Event{
				Type:    telemetry.EventAbility,
				Tick:    g.tick,
				Time:    g.tagCtx.Clock(),
				Agent:   i,
				Ability: a.String(),
			})
		}
	}
}

// updateMovement runs steering, applies stuck recovery, and integrates
// positions. The stuck tracker sees true displacement from the previous
// tick and may override the commanded velocity or teleport the agent.
func (g *Game) updateMovement() {
	points := g.agentPoints()

	for i := range g.views {
		v := &g.views[i]

		others := make([]systems.AgentPoint, 0, NumAgents-1)
		for _, p := range points {
			if p.ID != i {
				others = append(others, p)
			}
		}

		vel, vy := g.steering.Compute(systems.SteerAgent{
			ID:      i,
			Pos:     *v.pos,
			Profile: v.profile,
			Role:    v.role,
			Intent:  *v.intent,
			Genes:   g.genes[i],
			Memory:  g.memories[i],
		}, others, g.tagCtx.Clock())

		rec := g.stuck[i]
		res, out := g.stuckTracker.Update(rec,
			v.pos.X, v.pos.Z, v.prev.X, v.prev.Z, vel.Len(), others)

		switch res {
		case systems.ResolutionEscape:
			vel = out
			if g.lastRes[i] != systems.ResolutionEscape {
				g.collector.RecordEscape()
				g.writeEvent(telemetry.Event{
					Type:  telemetry.EventEscape,
					Tick:  g.tick,
					Time:  g.tagCtx.Clock(),
					Agent: i,
					Cause: rec.LastCause.String(),
				})
				slog.Info("stuck escape",
					"agent", v.profile.Name,
					"cause", rec.LastCause.String(),
				)
			}
		case systems.ResolutionWarp:
			g.collector.RecordWarp()
			g.writeEvent(telemetry.Event{
				Type:  telemetry.EventWarp,
				Tick:  g.tick,
				Time:  g.tagCtx.Clock(),
				Agent: i,
				X:     out.X,
				Z:     out.Z,
				Cause: rec.LastCause.String(),
			})
			slog.Info("stuck relocation",
				"agent", v.profile.Name,
				"cause", rec.LastCause.String(),
				"x", out.X,
				"z", out.Z,
			)
			v.prev.X, v.prev.Z = out.X, out.Z
			v.pos.X, v.pos.Z = out.X, out.Z
			v.vel.X, v.vel.Y, v.vel.Z = 0, 0, 0
			g.lastRes[i] = res
			continue
		}
		g.lastRes[i] = res

		v.vel.X, v.vel.Z = vel.X, vel.Z
		v.vel.Y = vy

		v.prev.X, v.prev.Z = v.pos.X, v.pos.Z
		v.pos.X += v.vel.X * g.dt
		v.pos.Z += v.vel.Z * g.dt
		v.pos.Y += v.vel.Y * g.dt

		// Hard clamps: the arena boundary is absolute, and altitude
		// never goes underground.
		he := g.arena.HalfExtent
		v.pos.X = math.Max(-he, math.Min(he, v.pos.X))
		v.pos.Z = math.Max(-he, math.Min(he, v.pos.Z))
		if v.pos.Y < 0 {
			v.pos.Y = 0
		}
	}
}

// updateLearning advances passive memory sampling, decay, ability
// timers, and survival score accrual.
func (g *Game) updateLearning() {
	for i := range g.views {
		v := &g.views[i]
		m := g.memories[i]
		m.Observe(v.pos.X, v.pos.Z, g.dt, v.role.IsIt)
		m.Decay(g.dt)
		g.genes[i].Tick(g.dt)

		if !v.role.IsIt {
			v.role.Score += g.dt
		}
	}
}

// agentPoints snapshots every agent's position for cross-agent queries.
func (g *Game) agentPoints() []systems.AgentPoint {
	out := make([]systems.AgentPoint, NumAgents)
	for i := range g.views {
		v := &g.views[i]
		out[i] = systems.AgentPoint{ID: i, X: v.pos.X, Z: v.pos.Z, IsIt: v.role.IsIt}
	}
	return out
}

// flushTelemetry emits the window stats when the window closes.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}
	g.flushWindow()
}

func (g *Game) flushWindow() {
	var lessons, maxGen int
	for i := 0; i < NumAgents; i++ {
		lessons += g.memories[i].Lessons()
		if gen := g.memories[i].Generation(); gen > maxGen {
			maxGen = gen
		}
	}

	itID := g.tagCtx.ItID()
	stats := g.collector.Flush(g.tick, itID, g.views[itID].profile.Name,
		g.Scores(), lessons, maxGen)

	if g.logStats {
		stats.LogStats()
	}
	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Warn("telemetry write failed", "error", err)
	}
}

// publishSnapshot hands the runner a fresh world view for the next
// intent exchange.
func (g *Game) publishSnapshot() {
	if g.runner == nil {
		return
	}

	q := g.cfg.Intent.PosQuantize
	snap := intent.Snapshot{Tick: g.tick, ItID: g.tagCtx.ItID()}
	for i := range g.views {
		v := &g.views[i]
		snap.Agents = append(snap.Agents, intent.AgentObs{
			ID:    i,
			Name:  v.profile.Name,
			X:     intent.Quantize(v.pos.X, q),
			Z:     intent.Quantize(v.pos.Z, q),
			State: v.role.State.String(),
		})
	}
	g.runner.Publish(snap)
}

func (g *Game) writeEvent(ev telemetry.Event) {
	if err := g.output.WriteEvent(ev); err != nil {
		slog.Warn("event write failed", "error", err)
	}
}
