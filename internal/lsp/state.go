package lsp

// serverState is the lifecycle phase of one session.
type serverState uint8

const (
	// stateUninitialized: nothing received yet; only initialize is legal.
	stateUninitialized serverState = iota
	// stateInitializing: initialize answered, waiting for the initialized
	// notification.
	stateInitializing
	// stateReady: workspace indexed, full protocol available.
	stateReady
	// stateShutdown: shutdown answered, waiting for exit.
	stateShutdown
)

func (s serverState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateReady:
		return "ready"
	default:
		return "shutdown"
	}
}
