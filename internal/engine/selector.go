package engine

import (
	"time"

	"nudge/internal/task"
)

// Candidate is a task offered for scoring with the user's state for it.
type Candidate struct {
	Task  task.Task
	State Interaction
}

// SelectCandidates picks at most one task per main-task family.
//
// An open main task is offered as is. A main task in a completion or dismissal
// cool-down takes its whole family out of the cycle. A main task that is only
// ignore-gated rotates to its alternative, then its micro substitute, when
// those are open and not already taken, and otherwise falls back to itself.
//
// states holds the user's interaction state by task id; mains missing from it
// are families the user is not enrolled in and are skipped.
func SelectCandidates(cat *task.Catalog, states map[string]Interaction, now time.Time) []Candidate {
	var out []Candidate
	added := map[string]struct{}{}

	offer := func(t task.Task, st Interaction) bool {
		if _, taken := added[t.ID]; taken {
			return false
		}
		added[t.ID] = struct{}{}
		out = append(out, Candidate{Task: t, State: st})
		return true
	}
	// substitutes must be open under their own state
	trySub := func(t task.Task, ok bool) bool {
		if !ok {
			return false
		}
		st := states[t.ID]
		if !st.Gates(now).Open() {
			return false
		}
		return offer(t, st)
	}

	for _, main := range cat.Mains() {
		st, enrolled := states[main.ID]
		if !enrolled {
			continue
		}

		gates := st.Gates(now)
		switch {
		case gates.Open():
			offer(main, st)
		case gates.Completed || gates.Dismissed:
			// cool-down: no substitute for this family
		default:
			if trySub(cat.Alternative(main)) || trySub(cat.Micro(main)) {
				continue
			}
			offer(main, st)
		}
	}
	return out
}
