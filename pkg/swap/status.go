package swap

import "intents-swap/pkg/oneclick"

// Class classifies a status line for presentation
type Class string

const (
	ClassInfo    Class = "info"
	ClassSuccess Class = "success"
	ClassWarning Class = "warning"
	ClassError   Class = "error"
)

// Status is the user-facing status line
type Status struct {
	Message string `json:"message"`
	Class   Class  `json:"class"`
}

// State is the lifecycle phase of the controller
type State int

const (
	StateIdle State = iota
	StateQuoting
	StateQuoted
	StatePolling
	StateSuccess
	StateRefunded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuoting:
		return "quoting"
	case StateQuoted:
		return "quoted"
	case StatePolling:
		return "polling"
	case StateSuccess:
		return "success"
	case StateRefunded:
		return "refunded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// statusLine maps an execution status code to its user-facing status.
// Unknown codes pass through verbatim.
func statusLine(code string) Status {
	switch code {
	case oneclick.StatusPendingDeposit:
		return Status{Message: "Waiting for deposit", Class: ClassInfo}
	case oneclick.StatusProcessing:
		return Status{Message: "Processing swap", Class: ClassInfo}
	case oneclick.StatusSuccess:
		return Status{Message: "Swap complete", Class: ClassSuccess}
	case oneclick.StatusRefunded:
		return Status{Message: "Swap refunded", Class: ClassInfo}
	case oneclick.StatusFailed:
		return Status{Message: "Swap failed", Class: ClassInfo}
	default:
		return Status{Message: code, Class: ClassInfo}
	}
}

// terminalState maps a terminal status code to the matching lifecycle state
func terminalState(code string) State {
	switch code {
	case oneclick.StatusSuccess:
		return StateSuccess
	case oneclick.StatusRefunded:
		return StateRefunded
	default:
		return StateFailed
	}
}
