// Package main provides CMA-ES search over steering weights for lively,
// fair chase dynamics.
package main

import (
	"github.com/pthm-cable/chase/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable steering weights.
// Tag rules and agent personalities stay locked; only force composition
// is searched.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "seek_weight", Path: "steering.seek_weight", Min: 0.5, Max: 2.0, Default: 1.0},
			{Name: "intent_weight_roam", Path: "steering.intent_weight_roam", Min: 0.2, Max: 1.0, Default: 0.6},
			{Name: "flee_scatter", Path: "steering.flee_scatter", Min: 0.0, Max: 0.9, Default: 0.45},
			{Name: "wander_strength", Path: "steering.wander_strength", Min: 0.1, Max: 0.8, Default: 0.35},
			{Name: "wander_freq", Path: "steering.wander_freq", Min: 0.05, Max: 1.0, Default: 0.25},
			{Name: "memory_bias_weight", Path: "steering.memory_bias_weight", Min: 0.0, Max: 1.0, Default: 0.4},
			{Name: "sprint_boost", Path: "steering.sprint_boost", Min: 1.0, Max: 1.5, Default: 1.15},
			{Name: "separation_radius", Path: "steering.separation_radius", Min: 0.8, Max: 3.0, Default: 1.5},
			{Name: "separation_weight", Path: "steering.separation_weight", Min: 0.5, Max: 3.0, Default: 1.2},
			{Name: "avoid_radius", Path: "steering.avoid_radius", Min: 1.0, Max: 4.0, Default: 2.0},
			{Name: "avoid_weight", Path: "steering.avoid_weight", Min: 1.0, Max: 6.0, Default: 2.5},
			{Name: "contain_weight", Path: "steering.contain_weight", Min: 1.0, Max: 8.0, Default: 4.0},
			{Name: "max_speed_scale", Path: "steering.max_speed_scale", Min: 1.0, Max: 2.0, Default: 1.5},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	s := &cfg.Steering
	i := 0
	s.SeekWeight = clamped[i]
	i++
	s.IntentWeightRoam = clamped[i]
	i++
	s.FleeScatter = clamped[i]
	i++
	s.WanderStrength = clamped[i]
	i++
	s.WanderFreq = clamped[i]
	i++
	s.MemoryBiasWeight = clamped[i]
	i++
	s.SprintBoost = clamped[i]
	i++
	s.SeparationRadius = clamped[i]
	i++
	s.SeparationWeight = clamped[i]
	i++
	s.AvoidRadius = clamped[i]
	i++
	s.AvoidWeight = clamped[i]
	i++
	s.ContainWeight = clamped[i]
	i++
	s.MaxSpeedScale = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	s := cfg.Steering
	return []float64{
		s.SeekWeight,
		s.IntentWeightRoam,
		s.FleeScatter,
		s.WanderStrength,
		s.WanderFreq,
		s.MemoryBiasWeight,
		s.SprintBoost,
		s.SeparationRadius,
		s.SeparationWeight,
		s.AvoidRadius,
		s.AvoidWeight,
		s.ContainWeight,
		s.MaxSpeedScale,
	}
}
