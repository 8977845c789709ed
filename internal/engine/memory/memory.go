// Package memory arbitrates access to the platform's persistent memory
// segments. Segments must be requested one tick before they can be read;
// the arbiter batches requests, exposes a consistent active-set snapshot for
// the duration of a tick, and enforces the per-segment size cap on writes.
package memory

import "log"

// SegmentCapacity is the platform's per-segment byte limit. Writes over the
// cap are dropped with an error log rather than silently truncated.
const SegmentCapacity = 50 * 1024

// Platform is the raw segment interface supplied by the host environment.
type Platform interface {
	// ActiveSegments lists the segments readable this tick.
	ActiveSegments() []int
	// Read returns a segment's contents; ok is false when the segment is
	// not active or has never been written.
	Read(segment int) (string, bool)
	Write(segment int, data string)
	// SetActiveSegments replaces the requested set; it takes effect on the
	// next tick.
	SetActiveSegments(segments []int)
}

// Requirement names a group of segments some subsystem needs, with an
// optional one-shot load callback and a flag gating engine execution until
// the group is readable.
type Requirement struct {
	Label          string
	Segments       []int
	GatesExecution bool
	// OnLoad runs once, the first tick all Segments are active.
	OnLoad func()

	loaded bool
}

// Arbiter tracks registered requirements and this tick's segment requests.
type Arbiter struct {
	platform Platform
	logger   *log.Logger

	requirements []*Requirement
	requested    map[int]bool

	// active is the once-per-tick snapshot of the platform's active set,
	// taken lazily on first use so a tick sees one consistent view.
	active map[int]bool
}

func NewArbiter(platform Platform, logger *log.Logger) *Arbiter {
	return &Arbiter{
		platform:  platform,
		logger:    logger,
		requested: map[int]bool{},
	}
}

// Register adds a requirement. Registration is idempotent per label.
func (a *Arbiter) Register(r *Requirement) {
	for _, existing := range a.requirements {
		if existing.Label == r.Label {
			return
		}
	}
	a.requirements = append(a.requirements, r)
}

// Request marks segments wanted for next tick. Requests accumulate until
// Flush.
func (a *Arbiter) Request(segments ...int) {
	for _, s := range segments {
		a.requested[s] = true
	}
}

// RequestRegistered requests every segment of every registered requirement.
func (a *Arbiter) RequestRegistered() {
	for _, r := range a.requirements {
		a.Request(r.Segments...)
	}
}

// IsActive reports whether a segment is readable this tick.
func (a *Arbiter) IsActive(segment int) bool {
	if a.active == nil {
		a.active = map[int]bool{}
		for _, s := range a.platform.ActiveSegments() {
			a.active[s] = true
		}
	}
	return a.active[segment]
}

// Get reads a segment. A segment that is not active reads as absent even if
// the platform would serve it.
func (a *Arbiter) Get(segment int) (string, bool) {
	if !a.IsActive(segment) {
		return "", false
	}
	return a.platform.Read(segment)
}

// Set writes a segment, dropping oversize payloads.
func (a *Arbiter) Set(segment int, data string) {
	if len(data) > SegmentCapacity {
		a.logger.Printf("ERROR: segment %d write of %d bytes exceeds capacity %d, dropping", segment, len(data), SegmentCapacity)
		return
	}
	a.platform.Write(segment, data)
}

// GatesReady reports whether every execution-gating requirement is fully
// active. The engine skips its tick body until this holds.
func (a *Arbiter) GatesReady() bool {
	for _, r := range a.requirements {
		if !r.GatesExecution {
			continue
		}
		for _, s := range r.Segments {
			if !a.IsActive(s) {
				return false
			}
		}
	}
	return true
}

// RunPendingLoads fires OnLoad for each requirement whose segments have all
// become active, once per requirement lifetime.
func (a *Arbiter) RunPendingLoads() {
	for _, r := range a.requirements {
		if r.loaded || r.OnLoad == nil {
			continue
		}
		ready := true
		for _, s := range r.Segments {
			if !a.IsActive(s) {
				ready = false
				break
			}
		}
		if ready {
			r.loaded = true
			r.OnLoad()
		}
	}
}

// ResetLoadState rearms every OnLoad callback. Used after a full restore.
func (a *Arbiter) ResetLoadState() {
	for _, r := range a.requirements {
		r.loaded = false
	}
}

// Flush pushes the accumulated request set to the platform and clears
// per-tick state. Call exactly once at end of tick.
func (a *Arbiter) Flush() {
	segs := make([]int, 0, len(a.requested))
	for s := range a.requested {
		segs = append(segs, s)
	}
	a.platform.SetActiveSegments(segs)
	a.requested = map[int]bool{}
	a.active = nil
}
