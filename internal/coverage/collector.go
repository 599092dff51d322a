package coverage

import (
	"github.com/drew/treqt/internal/requirements"
)

// Collector accumulates test-to-requirement mappings and outcomes for one
// run (or one worker of a distributed run). It never performs I/O.
type Collector struct {
	matcher  *requirements.Matcher
	registry *requirements.Registry

	testReqs map[string]requirements.IDSet
	order    []string // identity insertion order
	results  map[string]Outcome
}

// NewCollector creates a collector validating against registry
func NewCollector(matcher *requirements.Matcher, registry *requirements.Registry) *Collector {
	return &Collector{
		matcher:  matcher,
		registry: registry,
		testReqs: make(map[string]requirements.IDSet),
		results:  make(map[string]Outcome),
	}
}

// ObserveDocumentation extracts requirement references from a test's
// documentation and validates them. A test with no recognized identifiers is
// simply absent from the coverage model. An unknown reference is the one hard
// failure in the core and propagates immediately.
func (c *Collector) ObserveDocumentation(identity, doc string) error {
	refs := c.matcher.Extract(doc)
	if len(refs) == 0 {
		return nil
	}

	if err := c.registry.Validate(refs, identity); err != nil {
		return err
	}

	if _, seen := c.testReqs[identity]; !seen {
		c.order = append(c.order, identity)
	}
	c.testReqs[identity] = refs
	return nil
}

// RecordOutcome attaches a terminal outcome to a test. Only call-phase
// outcomes count, except that a skip reported during setup is accepted
// because such tests never reach the call phase. Last write wins.
func (c *Collector) RecordOutcome(identity string, phase Phase, outcome Outcome) {
	switch {
	case phase == PhaseCall:
	case phase == PhaseSetup && outcome == OutcomeSkipped:
	default:
		return
	}
	c.results[identity] = outcome
}

// Snapshot builds the self-contained coverage fragment for this collector.
func (c *Collector) Snapshot(ctx ExecutionContext) Snapshot {
	snap := Snapshot{
		Index:   make(map[string][]string),
		Context: ctx,
	}
	for _, identity := range c.order {
		outcome, ok := c.results[identity]
		if !ok {
			outcome = OutcomeUnknown
		}
		snap.Records = append(snap.Records, TestRecord{
			Identity:     identity,
			Requirements: c.testReqs[identity],
			Outcome:      outcome,
		})
	}
	snap.rebuildIndex()
	return snap
}
