package session

// Phase is the engine's lifecycle state.
type Phase int

const (
	PhaseReady Phase = iota
	PhaseRunning
	PhaseVerifying
	PhaseCorrectAnimation
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseVerifying:
		return "verifying"
	case PhaseCorrectAnimation:
		return "correct-animation"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// revealTarget says which text the revealer is currently showing.
type revealTarget int

const (
	targetNone revealTarget = iota
	targetStep
	targetFeedback
	targetSolution
)
