// Package coverage accumulates the mapping between tests and the
// requirements their documentation cites, together with per-test outcomes.
package coverage

// Outcome is the terminal result of one test
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnknown is the terminal fallback when a run aborts before a
	// test reports. Valid for reporting, not an error condition.
	OutcomeUnknown Outcome = "unknown"
)

// Phase identifies which part of a test's lifecycle reported an outcome
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseCall     Phase = "call"
	PhaseTeardown Phase = "teardown"
)
