package main

import (
	"math"

	"github.com/pthm-cable/chase/config"
	"github.com/pthm-cable/chase/game"
)

// Fitness targets. A good park session has a steady trickle of tags,
// roughly even survival scores, and no teleports.
const (
	targetTagsPerMinute = 3.0
	spreadWeight        = 10.0
	warpPenalty         = 2.0
	escapePenalty       = 0.1
)

// FitnessEvaluator runs headless simulations and scores chase quality.
// Lower is better.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int64
	seeds    []int64
	base     *config.Config

	lastQuality float64
}

// NewFitnessEvaluator creates an evaluator over the given seeds.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, base *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		base:     base,
	}
}

// Evaluate scores one parameter vector, averaged over all seeds.
func (e *FitnessEvaluator) Evaluate(raw []float64) float64 {
	var total, quality float64
	for _, seed := range e.seeds {
		cfg := *e.base
		e.params.ApplyToConfig(&cfg, raw)
		f := e.runOnce(&cfg, seed)
		total += f
		quality += 1.0 / (1.0 + f)
	}
	e.lastQuality = quality / float64(len(e.seeds))
	return total / float64(len(e.seeds))
}

// LastQuality returns the quality score of the most recent evaluation,
// in (0,1], for progress reporting.
func (e *FitnessEvaluator) LastQuality() float64 {
	return e.lastQuality
}

// runOnce runs a single headless simulation and scores it.
func (e *FitnessEvaluator) runOnce(cfg *config.Config, seed int64) float64 {
	g, err := game.NewGameWithOptions(game.Options{
		Config: cfg,
		Seed:   seed,
	})
	if err != nil {
		return 1e9
	}
	defer g.Close()

	for g.Tick() < e.maxTicks {
		g.UpdateHeadless()
	}

	minutes := g.Clock() / 60.0
	if minutes <= 0 {
		return 1e9
	}

	tagRate := float64(len(g.TagHistory())) / minutes
	ratePen := math.Abs(tagRate - targetTagsPerMinute)

	scores := g.Scores()
	lo, hi := scores[0], scores[0]
	for _, s := range scores {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	spreadPen := (hi - lo) / g.Clock() * spreadWeight

	escapes, warps := g.StuckTotals()

	return ratePen + spreadPen + float64(warps)*warpPenalty + float64(escapes)*escapePenalty
}
