// Package machine runs small per-task state machines with a hard ceiling on
// how many transitions a single invocation may perform. A machine that loops
// between states would otherwise stall the whole tick.
package machine

import "log"

// MaxTransitions bounds the number of state changes in one Run call.
const MaxTransitions = 20

// Run drives the machine: fn ticks the current state and returns the next
// state, or nil to stay put and yield. Every returned transition is applied
// before the ceiling check, so the final state is always the last one fn
// produced. Hitting the ceiling logs and returns; the state is picked up
// again next invocation.
func Run[S any](logger *log.Logger, label string, state *S, fn func(*S) *S) {
	transitions := 0
	for {
		next := fn(state)
		if next == nil {
			return
		}
		*state = *next
		transitions++
		if transitions >= MaxTransitions {
			logger.Printf("ERROR: %s exceeded %d state transitions in one pass", label, MaxTransitions)
			return
		}
	}
}

// RunErr is the fallible form: an error from fn stops the machine
// immediately and is returned to the caller, leaving the state as of the
// last applied transition.
func RunErr[S any](logger *log.Logger, label string, state *S, fn func(*S) (*S, error)) error {
	transitions := 0
	for {
		next, err := fn(state)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		*state = *next
		transitions++
		if transitions >= MaxTransitions {
			logger.Printf("ERROR: %s exceeded %d state transitions in one pass", label, MaxTransitions)
			return nil
		}
	}
}
