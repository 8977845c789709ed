package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
component_segments: [60, 61]
path_cost_segment: 62
snapshot_chunk_bytes: 1024
claim:
  max_owned_regions: 5
  max_claim_distance: 8
mining:
  harvesters_per_source: 2
scouting:
  stale_ticks: 300
  max_scouts: 4
spawning:
  min_spawn_energy: 250
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PathCostSegment != 62 || cfg.SnapshotChunkBytes != 1024 {
		t.Fatalf("base fields: %+v", cfg)
	}
	if len(cfg.ComponentSegments) != 2 || cfg.ComponentSegments[0] != 60 {
		t.Fatalf("component_segments = %v", cfg.ComponentSegments)
	}
	if cfg.Claim.MaxOwnedRegions != 5 || cfg.Mining.HarvestersPerSource != 2 {
		t.Fatalf("nested sections: %+v", cfg)
	}
	if cfg.Scouting.StaleTicks != 300 || cfg.Spawning.MinSpawnEnergy != 250 {
		t.Fatalf("nested sections: %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("claim: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestDefaultIsComplete(t *testing.T) {
	cfg := Default()
	if len(cfg.ComponentSegments) == 0 {
		t.Fatalf("no component segments configured")
	}
	for _, s := range cfg.ComponentSegments {
		if s == cfg.PathCostSegment {
			t.Fatalf("path cost segment %d collides with component segments", s)
		}
	}
	if cfg.SnapshotChunkBytes <= 0 || cfg.Scouting.MaxScouts <= 0 {
		t.Fatalf("default tuning incomplete: %+v", cfg)
	}
}
