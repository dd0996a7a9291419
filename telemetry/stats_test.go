package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/chase/systems"
)

func TestComputeDistStats(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantMean float64
	}{
		{"empty", nil, 0},
		{"single", []float64{1.1}, 1.1},
		{"spread", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, p50, p90 := ComputeDistStats(tt.values)
			if math.Abs(mean-tt.wantMean) > 1e-9 {
				t.Errorf("mean = %v, want %v", mean, tt.wantMean)
			}
			if len(tt.values) > 0 {
				if p50 > p90 {
					t.Errorf("p50 (%v) > p90 (%v)", p50, p90)
				}
			}
		})
	}
}

func TestCollectorFlushResets(t *testing.T) {
	c := NewCollector(10.0, 1.0/60.0)

	c.RecordTag(systems.TagRecord{Time: 3.0, Tagger: 0, Target: 1, Distance: 1.1})
	c.RecordTag(systems.TagRecord{Time: 7.0, Tagger: 1, Target: 2, Distance: 0.9})
	c.RecordAbility(systems.AbilityDash)
	c.RecordAbility(systems.AbilityJuke)
	c.RecordUnlock()
	c.RecordEscape()
	c.RecordWarp()

	stats := c.Flush(600, 2, "Moss", []float64{1, 2, 5, 2, 0}, 12, 1)

	if stats.Tags != 2 {
		t.Errorf("Tags = %d, want 2", stats.Tags)
	}
	if stats.DashActivations != 1 || stats.JukeActivations != 1 || stats.FlightActivations != 0 {
		t.Errorf("ability counts = %d/%d/%d, want 1/0/1",
			stats.DashActivations, stats.FlightActivations, stats.JukeActivations)
	}
	if stats.Unlocks != 1 || stats.Escapes != 1 || stats.Warps != 1 {
		t.Errorf("unlocks/escapes/warps = %d/%d/%d, want 1/1/1",
			stats.Unlocks, stats.Escapes, stats.Warps)
	}
	if stats.ScoreSpread != 5.0 {
		t.Errorf("ScoreSpread = %v, want 5", stats.ScoreSpread)
	}
	if stats.ScoreMean != 2.0 {
		t.Errorf("ScoreMean = %v, want 2", stats.ScoreMean)
	}
	if stats.ItName != "Moss" {
		t.Errorf("ItName = %q, want Moss", stats.ItName)
	}

	// Second window starts clean.
	next := c.Flush(1200, 2, "Moss", []float64{1, 2, 5, 2, 0}, 12, 1)
	if next.Tags != 0 || next.DashActivations != 0 || next.Escapes != 0 || next.Warps != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != 600 {
		t.Errorf("WindowStartTick = %d, want 600", next.WindowStartTick)
	}
}

func TestCollectorShouldFlush(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)
	if c.WindowDurationTicks() != 60 {
		t.Fatalf("WindowDurationTicks = %d, want 60", c.WindowDurationTicks())
	}
	if c.ShouldFlush(59) {
		t.Error("ShouldFlush(59) = true, want false")
	}
	if !c.ShouldFlush(60) {
		t.Error("ShouldFlush(60) = false, want true")
	}
}
