package agent

import "fmt"

// Report summarizes one tick for the decision log.
type Report struct {
	Tick       uint64   `json:"tick"`
	Directives int      `json:"directives"`
	Missions   int      `json:"missions"`
	Jobs       int      `json:"jobs"`
	Regions    int      `json:"regions"`
	Spawned    int      `json:"spawned,omitempty"`
	Removed    int      `json:"removed,omitempty"`
	UnitDeaths int      `json:"unit_deaths,omitempty"`
	Invariants int      `json:"invariants,omitempty"`
	Decisions  []string `json:"decisions,omitempty"`
	Tasks      []string `json:"tasks,omitempty"`
}

func (r *Report) Decision(format string, args ...any) {
	r.Decisions = append(r.Decisions, fmt.Sprintf(format, args...))
}

// Task records one task's describe line for the tick.
func (r *Report) Task(format string, args ...any) {
	r.Tasks = append(r.Tasks, fmt.Sprintf(format, args...))
}

func (r *Report) reset(tick uint64) {
	*r = Report{Tick: tick}
}
