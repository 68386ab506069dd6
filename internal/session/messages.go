package session

import (
	"time"

	"github.com/abhisek/dailytutor/internal/asker"
	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/abhisek/dailytutor/internal/store"
)

// PaywallMsg asks the host to present the paywall for the given reason.
type PaywallMsg struct {
	Trigger quota.Trigger
}

// Every internal message carries the generation it was issued in. The engine
// drops messages from an older generation.

type limitsLoadedMsg struct {
	gen   int
	state quota.State
	err   error
}

type readyLoadedMsg struct {
	gen     int
	dayKey  string
	profile store.Profile
	offset  int
}

type stepLoadedMsg struct {
	gen  int
	step int
	res  asker.Result
	err  error
}

type verifiedMsg struct {
	gen int
	res asker.Result
	err error
}

type solutionMsg struct {
	gen int
	res asker.Result
	err error
}

type loaderTickMsg struct {
	gen int
	tag int
}

type elapsedTickMsg struct {
	gen  int
	tag  int
	time time.Time
}

type animDoneMsg struct {
	gen int
	tag int
}

type paywallDueMsg struct {
	gen int
	tag int
}

type sessionSavedMsg struct {
	gen    int
	streak int
	err    error
}
