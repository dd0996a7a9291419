package telemetry

import "github.com/pthm-cable/chase/systems"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	// Event counters for current window
	tags           int
	tagDistances   []float64
	tenures        []float64
	lastTagTime    float64
	dashCount      int
	flightCount    int
	jukeCount      int
	unlocks        int
	backgroundMuts int
	escapes        int
	warps          int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTag records a completed tag at the given game-clock time.
func (c *Collector) RecordTag(rec systems.TagRecord) {
	c.tags++
	c.tagDistances = append(c.tagDistances, rec.Distance)
	c.tenures = append(c.tenures, rec.Time-c.lastTagTime)
	c.lastTagTime = rec.Time
}

// RecordAbility records an ability activation.
func (c *Collector) RecordAbility(a systems.Ability) {
	switch a {
	case systems.AbilityDash:
		c.dashCount++
	case systems.AbilityFlight:
		c.flightCount++
	case systems.AbilityJuke:
		c.jukeCount++
	}
}

// RecordUnlock records a gene crossing its ability threshold.
func (c *Collector) RecordUnlock() {
	c.unlocks++
}

// RecordBackgroundMutation records one universal drift pass.
func (c *Collector) RecordBackgroundMutation() {
	c.backgroundMuts++
}

// RecordEscape records a stuck steer-escape override.
func (c *Collector) RecordEscape() {
	c.escapes++
}

// RecordWarp records a stuck relocation teleport.
func (c *Collector) RecordWarp() {
	c.warps++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides end-of-window state: who is IT, per-agent scores,
// and learning progress.
func (c *Collector) Flush(
	currentTick int64,
	itID int,
	itName string,
	scores []float64,
	totalLessons, maxGeneration int,
) WindowStats {
	distMean, distP50, distP90 := ComputeDistStats(c.tagDistances)
	tenureMean, _, _ := ComputeDistStats(c.tenures)

	var scoreMean, scoreSpread float64
	if len(scores) > 0 {
		lo, hi := scores[0], scores[0]
		var sum float64
		for _, s := range scores {
			sum += s
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		scoreMean = sum / float64(len(scores))
		scoreSpread = hi - lo
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Tags:        c.tags,
		TagDistMean: distMean,
		TagDistP50:  distP50,
		TagDistP90:  distP90,

		ItID:         itID,
		ItName:       itName,
		ItTenureMean: tenureMean,

		ScoreMean:   scoreMean,
		ScoreSpread: scoreSpread,

		DashActivations:   c.dashCount,
		FlightActivations: c.flightCount,
		JukeActivations:   c.jukeCount,
		Unlocks:           c.unlocks,
		BackgroundMuts:    c.backgroundMuts,

		TotalLessons:  totalLessons,
		MaxGeneration: maxGeneration,

		Escapes: c.escapes,
		Warps:   c.warps,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.tags = 0
	c.tagDistances = c.tagDistances[:0]
	c.tenures = c.tenures[:0]
	c.dashCount = 0
	c.flightCount = 0
	c.jukeCount = 0
	c.unlocks = 0
	c.backgroundMuts = 0
	c.escapes = 0
	c.warps = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
