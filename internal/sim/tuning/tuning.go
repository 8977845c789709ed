// Package tuning holds the planner's tunable knobs, loaded from yaml.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Segments assigned to engine state. ComponentSegments hold the task
	// snapshot, PathCostSegment holds cached region path costs.
	ComponentSegments []int `yaml:"component_segments"`
	PathCostSegment   int   `yaml:"path_cost_segment"`

	SnapshotChunkBytes int `yaml:"snapshot_chunk_bytes"`

	Claim    ClaimTuning    `yaml:"claim"`
	Mining   MiningTuning   `yaml:"mining"`
	Scouting ScoutingTuning `yaml:"scouting"`
	Spawning SpawnTuning    `yaml:"spawning"`
}

type ClaimTuning struct {
	// MaxOwnedRegions caps how many regions the claim directive will try
	// to hold at once.
	MaxOwnedRegions   int `yaml:"max_owned_regions"`
	MaxClaimDistance  int `yaml:"max_claim_distance"`
	CandidateMinScore int `yaml:"candidate_min_score"`
	ClaimersPerTarget int `yaml:"claimers_per_target"`
}

type MiningTuning struct {
	HarvestersPerSource int `yaml:"harvesters_per_source"`
	HaulersPerSource    int `yaml:"haulers_per_source"`
	MaxOutpostDistance  int `yaml:"max_outpost_distance"`
}

type ScoutingTuning struct {
	// StaleTicks is the observation age past which a region is worth
	// scouting again.
	StaleTicks       int `yaml:"stale_ticks"`
	IdleExploreTicks int `yaml:"idle_explore_ticks"`
	MaxScouts        int `yaml:"max_scouts"`
}

type SpawnTuning struct {
	MaxQueueLength int `yaml:"max_queue_length"`
	MinSpawnEnergy int `yaml:"min_spawn_energy"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Default is the configuration used when no tuning file is given.
func Default() Tuning {
	return Tuning{
		ComponentSegments:  []int{50, 51, 52, 53},
		PathCostSegment:    55,
		SnapshotChunkBytes: 50 * 1024,
		Claim: ClaimTuning{
			MaxOwnedRegions:   3,
			MaxClaimDistance:  6,
			CandidateMinScore: 2,
			ClaimersPerTarget: 1,
		},
		Mining: MiningTuning{
			HarvestersPerSource: 1,
			HaulersPerSource:    1,
			MaxOutpostDistance:  2,
		},
		Scouting: ScoutingTuning{
			StaleTicks:       5000,
			IdleExploreTicks: 10,
			MaxScouts:        2,
		},
		Spawning: SpawnTuning{
			MaxQueueLength: 20,
			MinSpawnEnergy: 200,
		},
	}
}
