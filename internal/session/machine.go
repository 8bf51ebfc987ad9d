// Package session drives the guided solar check as an explicit state
// machine: a session moves idle → location_resolved → data_fetched →
// evaluated → ended, and any other move is rejected.
package session

import (
	"fmt"

	"solarcheck/internal/types"
)

// transitions maps each state to the triggers it accepts and the resulting
// state. End is accepted everywhere except ended. Restart is handled by the
// service because it replaces the session rather than moving it.
var transitions = map[types.SessionState]map[types.SessionTrigger]types.SessionState{
	types.SessionIdle: {
		types.TriggerResolveLocation: types.SessionLocationResolved,
		types.TriggerEnd:             types.SessionEnded,
	},
	types.SessionLocationResolved: {
		types.TriggerFetchData: types.SessionDataFetched,
		types.TriggerEnd:       types.SessionEnded,
	},
	types.SessionDataFetched: {
		types.TriggerEvaluate: types.SessionEvaluated,
		types.TriggerEnd:      types.SessionEnded,
	},
	types.SessionEvaluated: {
		types.TriggerSelectPanels: types.SessionEvaluated,
		types.TriggerEnd:          types.SessionEnded,
	},
	types.SessionEnded: {
		types.TriggerRestart: types.SessionIdle,
	},
}

// Next returns the state reached by firing trigger in state, or a
// conflict_invalid_session_transition error.
func Next(state types.SessionState, trigger types.SessionTrigger) (types.SessionState, error) {
	if to, ok := transitions[state][trigger]; ok {
		return to, nil
	}
	return "", types.NewAppErrorWithDetails(
		types.ErrCodeConflictSessionTransition,
		fmt.Sprintf("cannot %s while session is %s", trigger, state),
		nil,
		map[string]any{"state": string(state), "trigger": string(trigger)},
	)
}

// Allowed lists the triggers accepted in state. Used to tell clients what
// they can do next.
func Allowed(state types.SessionState) []types.SessionTrigger {
	order := []types.SessionTrigger{
		types.TriggerResolveLocation,
		types.TriggerFetchData,
		types.TriggerEvaluate,
		types.TriggerSelectPanels,
		types.TriggerEnd,
		types.TriggerRestart,
	}
	out := make([]types.SessionTrigger, 0, 2)
	for _, t := range order {
		if _, ok := transitions[state][t]; ok {
			out = append(out, t)
		}
	}
	return out
}
