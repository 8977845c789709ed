package agent

import (
	"strings"

	"overseer/internal/engine/store"
)

const snapshotVersion = 1

// taskRecord pairs an attribute value with its entity's stable marker.
// Entity handles embedded inside Data stay valid because the arena image
// is restored slot for slot.
type taskRecord[T any] struct {
	Marker uint64 `json:"m"`
	Data   T      `json:"d"`
}

type snapshotImage struct {
	Version int         `json:"version"`
	Tick    uint64      `json:"tick"`
	Arena   store.Image `json:"arena"`

	Directives []taskRecord[DirectiveData] `json:"directives"`
	Missions   []taskRecord[MissionData]   `json:"missions"`
	Jobs       []taskRecord[JobData]       `json:"jobs"`
	Owners     []taskRecord[Owner]         `json:"owners"`
	Regions    []taskRecord[RegionData]    `json:"regions"`
	Units      []taskRecord[UnitData]      `json:"units"`
}

func collectRecords[T any](ctx *Context, t *store.Table[T]) []taskRecord[T] {
	out := make([]taskRecord[T], 0, t.Len())
	for _, e := range sortedByMarker(ctx.Arena, t) {
		v, ok := t.Get(e)
		if !ok {
			continue
		}
		out = append(out, taskRecord[T]{Marker: ctx.Arena.Marker(e), Data: *v})
	}
	return out
}

func restoreRecords[T any](ctx *Context, t *store.Table[T], recs []taskRecord[T]) {
	for i := range recs {
		e, ok := ctx.Arena.ByMarker(recs[i].Marker)
		if !ok {
			ctx.Invariant("snapshot record marker %d has no arena slot", recs[i].Marker)
			continue
		}
		data := recs[i].Data
		t.Set(e, &data)
	}
}

func buildImage(ctx *Context) snapshotImage {
	return snapshotImage{
		Version:    snapshotVersion,
		Tick:       ctx.World.Time(),
		Arena:      ctx.Arena.Export(),
		Directives: collectRecords(ctx, ctx.Directives),
		Missions:   collectRecords(ctx, ctx.Missions),
		Jobs:       collectRecords(ctx, ctx.Jobs),
		Owners:     collectRecords(ctx, ctx.Owners),
		Regions:    collectRecords(ctx, ctx.Regions),
		Units:      collectRecords(ctx, ctx.Units),
	}
}

// serializeState writes the engine image across the component segments,
// one chunk per segment, clearing any leftover segments. An image too big
// for the segment group is an error; the previous snapshot stays in
// place.
func serializeState(ctx *Context) {
	data, err := encodeString(buildImage(ctx))
	if err != nil {
		ctx.Log.Printf("ERROR: snapshot encode: %v", err)
		return
	}
	segs := ctx.Config.ComponentSegments
	chunk := ctx.Config.SnapshotChunkBytes
	if chunk <= 0 {
		chunk = 50 * 1024
	}
	need := (len(data) + chunk - 1) / chunk
	if need > len(segs) {
		ctx.Log.Printf("ERROR: snapshot needs %d segments, only %d configured; keeping previous snapshot", need, len(segs))
		return
	}
	for i, seg := range segs {
		lo := i * chunk
		if lo >= len(data) {
			ctx.Memory.Set(seg, "")
			continue
		}
		hi := lo + chunk
		if hi > len(data) {
			hi = len(data)
		}
		ctx.Memory.Set(seg, data[lo:hi])
	}
}

// restoreState rebuilds the engine from the component segments. An empty
// or undecodable image starts the engine fresh; restore never fails the
// tick.
func restoreState(ctx *Context) {
	var parts []string
	for _, seg := range ctx.Config.ComponentSegments {
		if data, ok := ctx.Memory.Get(seg); ok && data != "" {
			parts = append(parts, data)
		}
	}
	if len(parts) == 0 {
		ctx.Log.Printf("no snapshot found, starting fresh")
		return
	}
	var img snapshotImage
	if err := decodeString(strings.Join(parts, ""), &img); err != nil {
		ctx.Log.Printf("ERROR: snapshot decode, starting fresh: %v", err)
		return
	}
	if img.Version != snapshotVersion {
		ctx.Log.Printf("snapshot version %d unsupported, starting fresh", img.Version)
		return
	}
	ctx.Arena.Restore(img.Arena)
	restoreRecords(ctx, ctx.Directives, img.Directives)
	restoreRecords(ctx, ctx.Missions, img.Missions)
	restoreRecords(ctx, ctx.Jobs, img.Jobs)
	restoreRecords(ctx, ctx.Owners, img.Owners)
	restoreRecords(ctx, ctx.Regions, img.Regions)
	restoreRecords(ctx, ctx.Units, img.Units)
	rebuildMapping(ctx)
	ctx.Log.Printf("restored snapshot from tick %d: %d directives, %d missions, %d jobs",
		img.Tick, ctx.Directives.Len(), ctx.Missions.Len(), ctx.Jobs.Len())
}
