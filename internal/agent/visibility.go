package agent

import "sort"

// Visibility request priorities.
const (
	VisibilityCritical = 100
	VisibilityHigh     = 75
	VisibilityMedium   = 50
	VisibilityLow      = 25
)

type visibilityRequest struct {
	region   string
	priority int
	claimed  bool
}

// VisibilityQueue collects requests to observe regions the engine cannot
// currently see. Scout jobs claim requests so two scouts never chase the
// same region; requests are cleared once the region turns visible.
type VisibilityQueue struct {
	requests map[string]*visibilityRequest
}

func NewVisibilityQueue() *VisibilityQueue {
	return &VisibilityQueue{requests: map[string]*visibilityRequest{}}
}

// Request asks for eyes on a region. Repeated requests keep the highest
// priority.
func (q *VisibilityQueue) Request(region string, priority int) {
	if r, ok := q.requests[region]; ok {
		if priority > r.priority {
			r.priority = priority
		}
		return
	}
	q.requests[region] = &visibilityRequest{region: region, priority: priority}
}

// Claim marks a region's request as being worked. Returns false when the
// request is absent or already claimed.
func (q *VisibilityQueue) Claim(region string) bool {
	r, ok := q.requests[region]
	if !ok || r.claimed {
		return false
	}
	r.claimed = true
	return true
}

// Release undoes a claim, typically when the claiming scout dies.
func (q *VisibilityQueue) Release(region string) {
	if r, ok := q.requests[region]; ok {
		r.claimed = false
	}
}

// Unclaimed lists open requests, highest priority first.
func (q *VisibilityQueue) Unclaimed() []string {
	var open []*visibilityRequest
	for _, r := range q.requests {
		if !r.claimed {
			open = append(open, r)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].priority != open[j].priority {
			return open[i].priority > open[j].priority
		}
		return open[i].region < open[j].region
	})
	out := make([]string, len(open))
	for i, r := range open {
		out[i] = r.region
	}
	return out
}

func (q *VisibilityQueue) Len() int { return len(q.requests) }

// pruneVisibility drops requests for regions that became visible this
// tick and resets claims. A claim lasts one tick; live scouts renew
// theirs every run, so a dead scout's claim simply lapses.
func pruneVisibility(ctx *Context) {
	for region, r := range ctx.Visibility.requests {
		if obs, ok := ctx.World.Region(region); ok && obs.Visible {
			delete(ctx.Visibility.requests, region)
			continue
		}
		r.claimed = false
	}
}
