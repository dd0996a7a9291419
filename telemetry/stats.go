package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Tag play during window
	Tags        int     `csv:"tags"`
	TagDistMean float64 `csv:"tag_dist_mean"`
	TagDistP50  float64 `csv:"tag_dist_p50"`
	TagDistP90  float64 `csv:"tag_dist_p90"`

	// Who holds IT at window end, and how long tenures lasted
	ItID         int     `csv:"it_id"`
	ItName       string  `csv:"it_name"`
	ItTenureMean float64 `csv:"it_tenure_mean"`

	// Score distribution at window end
	ScoreMean   float64 `csv:"score_mean"`
	ScoreSpread float64 `csv:"score_spread"`

	// Abilities and evolution
	DashActivations   int `csv:"dash_activations"`
	FlightActivations int `csv:"flight_activations"`
	JukeActivations   int `csv:"juke_activations"`
	Unlocks           int `csv:"unlocks"`
	BackgroundMuts    int `csv:"background_muts"`

	// Learning progress at window end
	TotalLessons  int `csv:"total_lessons"`
	MaxGeneration int `csv:"max_generation"`

	// Stuck recovery during window
	Escapes int `csv:"escapes"`
	Warps   int `csv:"warps"`
}

// ComputeDistStats calculates mean and percentiles from sampled values.
func ComputeDistStats(values []float64) (mean, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("tags", s.Tags),
		slog.Float64("tag_dist_mean", s.TagDistMean),
		slog.Float64("tag_dist_p50", s.TagDistP50),
		slog.Float64("tag_dist_p90", s.TagDistP90),
		slog.Int("it_id", s.ItID),
		slog.String("it_name", s.ItName),
		slog.Float64("it_tenure_mean", s.ItTenureMean),
		slog.Float64("score_mean", s.ScoreMean),
		slog.Float64("score_spread", s.ScoreSpread),
		slog.Int("dash_activations", s.DashActivations),
		slog.Int("flight_activations", s.FlightActivations),
		slog.Int("juke_activations", s.JukeActivations),
		slog.Int("unlocks", s.Unlocks),
		slog.Int("background_muts", s.BackgroundMuts),
		slog.Int("total_lessons", s.TotalLessons),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Int("escapes", s.Escapes),
		slog.Int("warps", s.Warps),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"tags", s.Tags,
		"tag_dist_mean", s.TagDistMean,
		"tag_dist_p50", s.TagDistP50,
		"tag_dist_p90", s.TagDistP90,
		"it_id", s.ItID,
		"it_name", s.ItName,
		"it_tenure_mean", s.ItTenureMean,
		"score_mean", s.ScoreMean,
		"score_spread", s.ScoreSpread,
		"dash_activations", s.DashActivations,
		"flight_activations", s.FlightActivations,
		"juke_activations", s.JukeActivations,
		"unlocks", s.Unlocks,
		"background_muts", s.BackgroundMuts,
		"total_lessons", s.TotalLessons,
		"max_generation", s.MaxGeneration,
		"escapes", s.Escapes,
		"warps", s.Warps,
	)
}
