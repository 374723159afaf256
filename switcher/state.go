package switcher

// CycleState identifies where a switch cycle currently is. The daemon moves
// through the states in order and always returns to StateIdle, whatever the
// outcome.
type CycleState int

const (
	StateIdle CycleState = iota
	StateEvaluating
	StateTearingDown
	StateAwaitingReachability
	StateActivating
)

// String returns a human-readable state name.
func (s CycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateTearingDown:
		return "tearing down"
	case StateAwaitingReachability:
		return "awaiting reachability"
	case StateActivating:
		return "activating"
	default:
		return "unknown"
	}
}

// Outcome classifies how a switch cycle ended.
type Outcome string

const (
	// OutcomeCompliant means the host already matched the policy.
	OutcomeCompliant Outcome = "compliant"
	// OutcomeRemediated means tunnels were switched to match the policy.
	OutcomeRemediated Outcome = "remediated"
	// OutcomeNoNetwork means no link attachments were active, so the cycle
	// ended without touching any tunnel.
	OutcomeNoNetwork Outcome = "no_network"
	// OutcomeUnreachable means the network never became reachable, so no
	// tunnel was activated.
	OutcomeUnreachable Outcome = "unreachable"
	// OutcomeCancelled means the daemon shut down mid-cycle.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeError means the cycle failed; the next notification retries.
	OutcomeError Outcome = "error"
)
