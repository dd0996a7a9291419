package game

import (
	"github.com/pthm-cable/chase/config"
	"github.com/pthm-cable/chase/systems"
)

// The systems packages take plain parameter structs instead of reading
// configuration themselves; this file is the one place config keys map
// onto them.

func buildArena(cfg *config.Config) *systems.Arena {
	arena := &systems.Arena{HalfExtent: cfg.Arena.HalfExtent}
	for _, o := range cfg.Arena.Obstacles {
		ob := systems.Obstacle{
			Name:  o.Name,
			X:     o.X,
			Z:     o.Z,
			R:     o.Radius,
			HalfW: o.HalfW,
			HalfD: o.HalfD,
		}
		if o.Shape == "rect" {
			ob.Kind = systems.ObstacleRect
		} else {
			ob.Kind = systems.ObstacleCircle
		}
		arena.Obstacles = append(arena.Obstacles, ob)
	}
	return arena
}

func tagParams(cfg *config.Config) systems.TagParams {
	return systems.TagParams{
		TagDistance:   cfg.Tag.Distance,
		Cooldown:      cfg.Tag.Cooldown,
		TauntDuration: cfg.Tag.TauntDuration,
	}
}

func mutationParams(cfg *config.Config) systems.MutationParams {
	return systems.MutationParams{
		TaggedSigma:     cfg.Mutation.TaggedSigma,
		TaggedBias:      cfg.Mutation.TaggedBias,
		ReinforceAmount: cfg.Mutation.ReinforceAmount,
		BackgroundSigma: cfg.Mutation.BackgroundSigma,
	}
}

func steeringParams(cfg *config.Config) systems.SteeringParams {
	s := cfg.Steering
	return systems.SteeringParams{
		SeekWeight:       s.SeekWeight,
		IntentWeightHunt: s.IntentWeightHunt,
		IntentWeightFlee: s.IntentWeightFlee,
		IntentWeightRoam: s.IntentWeightRoam,
		FleeScatter:      s.FleeScatter,
		WanderStrength:   s.WanderStrength,
		WanderFreq:       s.WanderFreq,
		MemoryBiasWeight: s.MemoryBiasWeight,
		SprintBoost:      s.SprintBoost,
		SeparationRadius: s.SeparationRadius,
		SeparationWeight: s.SeparationWeight,
		SeparationCap:    s.SeparationCap,
		AvoidRadius:      s.AvoidRadius,
		AvoidWeight:      s.AvoidWeight,
		AvoidMinForce:    s.AvoidMinForce,
		ContainWeight:    s.ContainWeight,
		MaxSpeedScale:    s.MaxSpeedScale,
		HoverAltitude:    s.HoverAltitude,
		HoverGain:        s.HoverGain,
		HoverOsc:         s.HoverOsc,
		DescendRate:      s.DescendRate,
	}
}

func memoryParams(cfg *config.Config) systems.MemoryParams {
	m := cfg.Memory
	return systems.MemoryParams{
		GridSize:        m.GridSize,
		HalfExtent:      cfg.Arena.HalfExtent,
		TrailLength:     m.TrailLength,
		SampleInterval:  m.SampleInterval,
		DecayInterval:   m.DecayInterval,
		DecayFactor:     m.DecayFactor,
		ConfidenceFloor: m.ConfidenceFloor,
		LessonsPerGen:   m.LessonsPerGen,
		NeighborRadius:  m.NeighborRadius,
	}
}

func stuckParams(cfg *config.Config) systems.StuckParams {
	s := cfg.Stuck
	return systems.StuckParams{
		MinDisplacement:    s.MinDisplacement,
		MinIntent:          s.MinIntent,
		DiagnoseAfter:      s.DiagnoseAfter,
		EscapeAfter:        s.EscapeAfter,
		RelocateAfter:      s.RelocateAfter,
		EscapeSamples:      s.EscapeSamples,
		EscapeDistance:     s.EscapeDistance,
		EscapeSpeed:        s.EscapeSpeed,
		ClearanceCap:       s.ClearanceCap,
		InBoundsBonus:      s.InBoundsBonus,
		CenterPull:         s.CenterPull,
		AgentPenalty:       s.AgentPenalty,
		AgentPenaltyRadius: s.AgentPenaltyRadius,
		RelocateGrid:       s.RelocateGrid,
		TravelPenalty:      s.TravelPenalty,
	}
}

func geneBias(a config.AgentConfig) [systems.NumGenes]float64 {
	return [systems.NumGenes]float64{
		systems.GeneDash:  a.GeneBias.Dash,
		systems.GeneWings: a.GeneBias.Wings,
		systems.GeneJuke:  a.GeneBias.Juke,
	}
}
