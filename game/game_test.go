package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/chase/config"
)

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	g, err := NewGameWithOptions(Options{Config: cfg, Seed: seed})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func (g *Game) countIt() int {
	n := 0
	for i := range g.views {
		if g.views[i].role.IsIt {
			n++
		}
	}
	return n
}

func TestNewGameSpawnsFiveAgentsWithOneIt(t *testing.T) {
	g := newTestGame(t, 42)

	if g.countIt() != 1 {
		t.Fatalf("IT count at start = %d, want 1", g.countIt())
	}
	if g.ItID() < 0 || g.ItID() >= NumAgents {
		t.Fatalf("ItID = %d, want [0,%d)", g.ItID(), NumAgents)
	}

	he := g.cfg.Arena.HalfExtent
	for i := range g.views {
		v := &g.views[i]
		if math.Abs(v.pos.X) > he || math.Abs(v.pos.Z) > he {
			t.Errorf("agent %d spawned out of bounds at (%v,%v)", i, v.pos.X, v.pos.Z)
		}
		if _, c := g.arena.NearestObstacle(v.pos.X, v.pos.Z); c <= 0 {
			t.Errorf("agent %d spawned inside an obstacle", i)
		}
	}
}

func TestHeadlessRunKeepsInvariants(t *testing.T) {
	g := newTestGame(t, 7)
	he := g.cfg.Arena.HalfExtent

	const totalTicks = 1200
	for g.Tick() < totalTicks {
		g.UpdateHeadless()

		if n := g.countIt(); n != 1 {
			t.Fatalf("tick %d: IT count = %d, want 1", g.Tick(), n)
		}
		for i := range g.views {
			v := &g.views[i]
			if math.Abs(v.pos.X) > he || math.Abs(v.pos.Z) > he {
				t.Fatalf("tick %d: agent %d at (%v,%v) outside half extent %v",
					g.Tick(), i, v.pos.X, v.pos.Z, he)
			}
		}
	}

	wantClock := float64(totalTicks) * g.dt
	if math.Abs(g.Clock()-wantClock) > 1e-6 {
		t.Errorf("clock = %v after %d ticks, want %v", g.Clock(), totalTicks, wantClock)
	}

	// Non-IT agents accrue survival score every tick, so the cast total
	// tracks the clock exactly.
	var sum float64
	for _, s := range g.Scores() {
		if s < 0 {
			t.Errorf("negative score %v", s)
		}
		sum += s
	}
	want := float64(NumAgents-1) * wantClock
	if math.Abs(sum-want) > 1e-6 {
		t.Errorf("score total = %v, want %v", sum, want)
	}
}

func TestTagHistoryStaysConsistent(t *testing.T) {
	g := newTestGame(t, 99)

	for g.Tick() < 6000 {
		g.UpdateHeadless()
	}

	for i, rec := range g.TagHistory() {
		if rec.Tagger == rec.Target {
			t.Errorf("tag %d: self-tag by agent %d", i, rec.Tagger)
		}
		if rec.Distance >= g.cfg.Tag.Distance {
			t.Errorf("tag %d: distance %v not under %v", i, rec.Distance, g.cfg.Tag.Distance)
		}
		if i > 0 && rec.Time < g.TagHistory()[i-1].Time {
			t.Errorf("tag %d: time went backwards", i)
		}
	}
}

func TestStepsPerUpdateBatchesTicks(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGameWithOptions(Options{Config: cfg, Seed: 1, StepsPerUpdate: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	g.UpdateHeadless()
	if g.Tick() != 10 {
		t.Errorf("tick = %d after one batched update, want 10", g.Tick())
	}
}

func TestAdvanceUsesFixedTimestep(t *testing.T) {
	g := newTestGame(t, 3)

	// Less than one step of real time: nothing happens.
	g.Advance(g.dt * 0.5)
	if g.Tick() != 0 {
		t.Fatalf("tick = %d after partial step, want 0", g.Tick())
	}

	// The remainder completes one step and banks the rest.
	g.Advance(g.dt * 1.0)
	if g.Tick() != 1 {
		t.Errorf("tick = %d, want 1", g.Tick())
	}
}

func TestOutputDirArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGameWithOptions(Options{Config: cfg, Seed: 5, OutputDir: dir, StatsWindowSec: 1})
	if err != nil {
		t.Fatal(err)
	}

	for g.Tick() < 180 {
		g.UpdateHeadless()
	}
	if err := g.Close(); err != nil {
		t.Fatalf("closing game: %v", err)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "tags.csv", "events.jsonl.zst"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
			continue
		}
		if name == "telemetry.csv" && info.Size() == 0 {
			t.Error("telemetry.csv is empty after stats windows elapsed")
		}
	}
}
