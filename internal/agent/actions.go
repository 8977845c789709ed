package agent

// ActionFlags track which intent pipelines a unit has used this tick so a
// job never submits two actions that the server would resolve against each
// other. The flags are coarse on purpose: actions sharing a pipeline bit
// conflict even when the server might occasionally allow both.
type ActionFlags uint32

const (
	pipeMove ActionFlags = 1 << iota
	pipeHarvest
	pipeWork
	pipeStore
	pipeClaim
)

const (
	ActionMove      = pipeMove
	ActionHarvest   = pipeHarvest | pipeWork
	ActionBuild     = pipeWork | pipeStore
	ActionUpgrade   = pipeWork | pipeStore
	ActionDismantle = pipeWork
	ActionTransfer  = pipeStore
	ActionWithdraw  = pipeStore
	ActionClaim     = pipeClaim
	ActionReserve   = pipeClaim
)

// Consume marks the action's pipelines used. Returns false without marking
// when any pipeline was already consumed this tick.
func (f *ActionFlags) Consume(a ActionFlags) bool {
	if *f&a != 0 {
		return false
	}
	*f |= a
	return true
}
