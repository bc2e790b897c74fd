package app

// State is the orchestrator's position in the daily lifecycle.
type State int

const (
	// StateNotStartedToday: no rows exist for today yet.
	StateNotStartedToday State = iota
	// StateInProgress: today's draws are being made.
	StateInProgress
	// StateCompleteToday: today's rows exist and are replayed verbatim.
	StateCompleteToday
)

func (s State) String() string {
	switch s {
	case StateNotStartedToday:
		return "NOT_STARTED_TODAY"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateCompleteToday:
		return "COMPLETE_TODAY"
	default:
		return "UNKNOWN"
	}
}
