package agent

import (
	"encoding/json"
	"strings"
)

// SnapshotTask is one task row in an inspected snapshot.
type SnapshotTask struct {
	Marker uint64
	Kind   string
	Detail string
}

// SnapshotInfo is a read-only view of a serialized engine image, for
// tooling.
type SnapshotInfo struct {
	Version  int
	Tick     uint64
	Entities int

	Directives []SnapshotTask
	Missions   []SnapshotTask
	Jobs       []SnapshotTask
	Regions    []SnapshotTask
	Units      []SnapshotTask
}

// InspectSnapshot decodes the concatenated component segments without
// touching a live engine.
func InspectSnapshot(parts []string) (*SnapshotInfo, error) {
	var img snapshotImage
	if err := decodeString(strings.Join(parts, ""), &img); err != nil {
		return nil, err
	}
	info := &SnapshotInfo{Version: img.Version, Tick: img.Tick}
	for _, s := range img.Arena.Slots {
		if s.Alive {
			info.Entities++
		}
	}
	for _, r := range img.Directives {
		info.Directives = append(info.Directives, SnapshotTask{Marker: r.Marker, Kind: r.Data.Kind(), Detail: compactJSON(r.Data)})
	}
	for _, r := range img.Missions {
		info.Missions = append(info.Missions, SnapshotTask{Marker: r.Marker, Kind: r.Data.Kind(), Detail: compactJSON(r.Data)})
	}
	for _, r := range img.Jobs {
		info.Jobs = append(info.Jobs, SnapshotTask{Marker: r.Marker, Kind: r.Data.Kind(), Detail: compactJSON(r.Data)})
	}
	for _, r := range img.Regions {
		info.Regions = append(info.Regions, SnapshotTask{Marker: r.Marker, Kind: "region", Detail: r.Data.Name})
	}
	for _, r := range img.Units {
		info.Units = append(info.Units, SnapshotTask{Marker: r.Marker, Kind: "unit", Detail: r.Data.Name})
	}
	return info, nil
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
