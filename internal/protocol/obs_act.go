package protocol

// Pos is a tile coordinate within a region.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region dispositions.
const (
	DispNeutral         = "NEUTRAL"
	DispMine            = "MINE"
	DispFriendly        = "FRIENDLY"
	DispHostile         = "HOSTILE"
	DispReservedMine    = "RESERVED_MINE"
	DispReservedHostile = "RESERVED_HOSTILE"
)

// OBS (server -> client)
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`
	Player          string `json:"player"`

	Regions []RegionObs `json:"regions"`
	Units   []UnitObs   `json:"units"`

	ActiveSegments []int          `json:"active_segments,omitempty"`
	Segments       []SegmentData  `json:"segments,omitempty"`
	Results        []ActionResult `json:"results,omitempty"`
}

type RegionObs struct {
	Name        string `json:"name"`
	Visible     bool   `json:"visible"`
	Disposition string `json:"disposition"`

	Controller *ControllerObs `json:"controller,omitempty"`
	Sources    []SourceObs    `json:"sources,omitempty"`
	Spawns     []SpawnObs     `json:"spawns,omitempty"`
	Sites      []SiteObs      `json:"sites,omitempty"`
	Structures []StructureObs `json:"structures,omitempty"`

	HostileCount int `json:"hostile_count,omitempty"`
}

type ControllerObs struct {
	ID            string          `json:"id"`
	Pos           Pos             `json:"pos"`
	Level         int             `json:"level"`
	Progress      int             `json:"progress,omitempty"`
	ProgressTotal int             `json:"progress_total,omitempty"`
	Owner         string          `json:"owner,omitempty"`
	Reservation   *ReservationObs `json:"reservation,omitempty"`
}

type ReservationObs struct {
	Player    string `json:"player"`
	TicksLeft int    `json:"ticks_left"`
}

type SourceObs struct {
	ID             string `json:"id"`
	Pos            Pos    `json:"pos"`
	Energy         int    `json:"energy"`
	EnergyCapacity int    `json:"energy_capacity"`
}

type SpawnObs struct {
	ID             string `json:"id"`
	Pos            Pos    `json:"pos"`
	Busy           bool   `json:"busy,omitempty"`
	Energy         int    `json:"energy"`
	EnergyCapacity int    `json:"energy_capacity"`
}

type SiteObs struct {
	ID            string `json:"id"`
	Pos           Pos    `json:"pos"`
	Kind          string `json:"kind"`
	Progress      int    `json:"progress"`
	ProgressTotal int    `json:"progress_total"`
}

type StructureObs struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Pos           Pos    `json:"pos"`
	Hits          int    `json:"hits,omitempty"`
	HitsMax       int    `json:"hits_max,omitempty"`
	Store         int    `json:"store,omitempty"`
	StoreCapacity int    `json:"store_capacity,omitempty"`
	Owner         string `json:"owner,omitempty"`
}

type UnitObs struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Region        string   `json:"region"`
	Pos           Pos      `json:"pos"`
	Body          []string `json:"body"`
	Carry         int      `json:"carry"`
	CarryCapacity int      `json:"carry_capacity"`
	TTL           int      `json:"ttl"`
	Spawning      bool     `json:"spawning,omitempty"`
}

type SegmentData struct {
	ID   int    `json:"id"`
	Data string `json:"data"`
}

type ActionResult struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// Unit action ops.
const (
	OpMoveTo       = "MOVE_TO"
	OpMoveToRegion = "MOVE_TO_REGION"
	OpHarvest      = "HARVEST"
	OpTransfer     = "TRANSFER"
	OpWithdraw     = "WITHDRAW"
	OpUpgrade      = "UPGRADE"
	OpBuild        = "BUILD"
	OpClaim        = "CLAIM"
	OpReserve      = "RESERVE"
	OpDismantle    = "DISMANTLE"
	OpSign         = "SIGN"
)

// ACT (client -> server)
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`

	Actions []ActionReq `json:"actions,omitempty"`
	Spawns  []SpawnReq  `json:"spawns,omitempty"`

	SegmentWrites   []SegmentData `json:"segment_writes,omitempty"`
	RequestSegments []int         `json:"request_segments,omitempty"`
}

type ActionReq struct {
	ID       string `json:"id"`
	Unit     string `json:"unit"`
	Op       string `json:"op"`
	TargetID string `json:"target_id,omitempty"`
	Region   string `json:"region,omitempty"`
	Pos      *Pos   `json:"pos,omitempty"`
	Text     string `json:"text,omitempty"`
}

type SpawnReq struct {
	ID      string   `json:"id"`
	SpawnID string   `json:"spawn_id"`
	Name    string   `json:"name"`
	Body    []string `json:"body"`
}
