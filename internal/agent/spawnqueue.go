package agent

import (
	"fmt"

	"overseer/internal/engine/store"
	"overseer/internal/protocol"
)

type SpawnPriority int

const (
	SpawnPriorityNone     SpawnPriority = 0
	SpawnPriorityLow      SpawnPriority = 25
	SpawnPriorityMedium   SpawnPriority = 50
	SpawnPriorityHigh     SpawnPriority = 75
	SpawnPriorityCritical SpawnPriority = 100
)

// SpawnToken identifies a pending spawn request so the requester can
// cancel it.
type SpawnToken uint64

// SpawnRequest asks for one unit in one region. Completion runs at end of
// the tick the spawn was accepted, with the fresh unit entity; the new
// unit first acts the following tick.
type SpawnRequest struct {
	Token      SpawnToken
	Region     string
	Priority   SpawnPriority
	NamePrefix string
	Body       []string
	Completion func(ctx *Context, name string, unit store.Entity)
}

// SpawnQueue holds pending spawn requests per region, highest priority
// first. Ties keep arrival order.
type SpawnQueue struct {
	// MaxPerRegion caps each region's queue; zero means unbounded.
	MaxPerRegion int

	nextToken SpawnToken
	byRegion  map[string][]*SpawnRequest
}

func NewSpawnQueue() *SpawnQueue {
	return &SpawnQueue{nextToken: 1, byRegion: map[string][]*SpawnRequest{}}
}

// Request enqueues a spawn and returns its cancellation token, or zero
// when the region's queue is full. Requesters hold no pending token in
// that case and simply ask again on a later tick.
func (q *SpawnQueue) Request(req SpawnRequest) SpawnToken {
	if q.MaxPerRegion > 0 && len(q.byRegion[req.Region]) >= q.MaxPerRegion {
		return 0
	}
	req.Token = q.nextToken
	q.nextToken++
	list := q.byRegion[req.Region]
	at := len(list)
	for i, r := range list {
		if req.Priority > r.Priority {
			at = i
			break
		}
	}
	list = append(list, nil)
	copy(list[at+1:], list[at:])
	list[at] = &req
	q.byRegion[req.Region] = list
	return req.Token
}

// Cancel removes a pending request. Returns false if it already left the
// queue.
func (q *SpawnQueue) Cancel(token SpawnToken) bool {
	for region, list := range q.byRegion {
		for i, r := range list {
			if r.Token == token {
				q.byRegion[region] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (q *SpawnQueue) Pending(region string) int { return len(q.byRegion[region]) }

// Part costs for spawn energy accounting.
var partCost = map[string]int{
	"WORK":          100,
	"CARRY":         50,
	"MOVE":          50,
	"ATTACK":        80,
	"RANGED_ATTACK": 150,
	"HEAL":          250,
	"CLAIM":         600,
	"TOUGH":         10,
}

func BodyCost(body []string) int {
	total := 0
	for _, p := range body {
		total += partCost[p]
	}
	return total
}

// ScaleBody builds base plus as many repeats of extra as maxEnergy
// affords, capped at 50 parts.
func ScaleBody(base, extra []string, maxEnergy int) []string {
	body := append([]string(nil), base...)
	cost := BodyCost(base)
	if len(extra) == 0 {
		return body
	}
	for {
		add := BodyCost(extra)
		if cost+add > maxEnergy || len(body)+len(extra) > 50 {
			return body
		}
		body = append(body, extra...)
		cost += add
	}
}

// processSpawns matches queued requests against idle spawns in their
// regions. One spawn starts at most one unit per tick; unaffordable
// requests wait rather than being skipped for cheaper lower-priority
// ones.
func processSpawns(ctx *Context) {
	for region, list := range ctx.Spawns.byRegion {
		if len(list) == 0 {
			continue
		}
		obs, ok := ctx.World.Region(region)
		if !ok || !obs.Visible {
			continue
		}
		// Hold spawning until the region has an idle spawn with at least
		// the configured energy reserve.
		if _, ok := firstIdleSpawn(obs, ctx.Config.Spawning.MinSpawnEnergy); !ok {
			continue
		}
		busy := map[string]bool{}
		for len(list) > 0 {
			req := list[0]
			var spawn protocol.SpawnObs
			found := false
			for _, sp := range obs.Spawns {
				if !sp.Busy && !busy[sp.ID] && sp.Energy >= BodyCost(req.Body) {
					spawn, found = sp, true
					break
				}
			}
			if !found {
				break
			}
			// The token keeps names unique when several same-prefix
			// requests are satisfied on one tick.
			name := fmt.Sprintf("%s_%d_%d", req.NamePrefix, ctx.World.Time(), req.Token)
			code := ctx.World.SpawnUnit(protocol.SpawnReq{
				ID:      fmt.Sprintf("spawn_%d", req.Token),
				SpawnID: spawn.ID,
				Name:    name,
				Body:    req.Body,
			})
			if code != protocol.CodeOK {
				ctx.Log.Printf("ERROR: spawn %s in %s rejected: %s", name, region, code)
				break
			}
			busy[spawn.ID] = true
			ctx.Report.Spawned++
			ctx.Report.Decision("spawning %s in %s (%d parts)", name, region, len(req.Body))
			completion := req.Completion
			list = list[1:]
			ctx.Defer(func(c *Context) {
				e := c.Arena.Create()
				c.Units.Set(e, &UnitData{Name: name, Created: c.World.Time()})
				if completion != nil {
					completion(c, name, e)
				}
			})
		}
		ctx.Spawns.byRegion[region] = list
	}
}
