package browser

// State is the lifecycle position of a SessionManager.
//
//	Uninitialized -> DriverReady -> BrowserReady -> ContextReady -> PageReady
//
// Scenario teardown returns to DriverReady and keeps the driver; full
// teardown returns to Uninitialized from any state.
type State int

const (
	StateUninitialized State = iota
	StateDriverReady
	StateBrowserReady
	StateContextReady
	StatePageReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateDriverReady:
		return "DRIVER_READY"
	case StateBrowserReady:
		return "BROWSER_READY"
	case StateContextReady:
		return "CONTEXT_READY"
	case StatePageReady:
		return "PAGE_READY"
	default:
		return "UNKNOWN"
	}
}

// canLaunch reports whether Launch may start from s.
func (s State) canLaunch() bool {
	return s == StateUninitialized || s == StateDriverReady
}
