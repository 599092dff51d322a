package coverage

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew/treqt/internal/requirements"
)

func record(identity string, outcome Outcome, reqs ...string) TestRecord {
	return TestRecord{
		Identity:     identity,
		Requirements: requirements.NewIDSet(reqs...),
		Outcome:      outcome,
	}
}

func fragment(records ...TestRecord) Snapshot {
	s := Snapshot{Records: records}
	s.rebuildIndex()
	return s
}

func identities(s Snapshot) []string {
	out := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.Identity)
	}
	sort.Strings(out)
	return out
}

func TestMergeDisjointFragments(t *testing.T) {
	a := fragment(record("pkg.TestA", OutcomePassed, "FR-1.1"))
	b := fragment(record("pkg.TestB", OutcomeFailed, "FR-1.1", "BR-2"))

	merged := Merge([]Snapshot{a, b})

	assert.Equal(t, []string{"pkg.TestA", "pkg.TestB"}, identities(merged))
	assert.Equal(t, []string{"pkg.TestA", "pkg.TestB"}, merged.Index["FR-1.1"])
	assert.Equal(t, []string{"pkg.TestB"}, merged.Index["BR-2"])
}

func TestMergeMembershipIsOrderIndependent(t *testing.T) {
	a := fragment(record("pkg.TestA", OutcomePassed, "FR-1.1"))
	b := fragment(record("pkg.TestB", OutcomeFailed, "FR-1.2"))
	c := fragment(record("pkg.TestC", OutcomeSkipped, "BR-3"))

	orders := [][]Snapshot{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}

	want := identities(Merge(orders[0]))
	for _, frags := range orders[1:] {
		assert.Equal(t, want, identities(Merge(frags)))
	}
}

func TestMergeOutcomeTieBreakIsLastWriteWins(t *testing.T) {
	// Same identity in two fragments: deliberate re-run, last merged wins.
	a := fragment(record("pkg.TestA", OutcomeFailed, "FR-1.1"))
	b := fragment(record("pkg.TestA", OutcomePassed, "FR-1.1"))

	merged := Merge([]Snapshot{a, b})
	require.Len(t, merged.Records, 1)
	assert.Equal(t, OutcomePassed, merged.Records[0].Outcome)

	merged = Merge([]Snapshot{b, a})
	require.Len(t, merged.Records, 1)
	assert.Equal(t, OutcomeFailed, merged.Records[0].Outcome)
}

func TestMergeConflictingRequirementSets(t *testing.T) {
	a := fragment(record("pkg.TestA", OutcomePassed, "FR-1.1"))
	b := fragment(record("pkg.TestA", OutcomePassed, "FR-1.2"))

	merged := Merge([]Snapshot{a, b})

	// Index is rebuilt from merged records, so the superseded requirement
	// set leaves no trace.
	assert.Equal(t, []string{"pkg.TestA"}, merged.Index["FR-1.2"])
	assert.NotContains(t, merged.Index, "FR-1.1")
}

func TestMergeEmpty(t *testing.T) {
	assert.True(t, Merge(nil).Empty())
	assert.True(t, Merge([]Snapshot{{}, {}}).Empty())
}

func TestMergeIndexInvariant(t *testing.T) {
	a := fragment(
		record("pkg.TestA", OutcomePassed, "FR-1.1"),
		record("pkg.TestB", OutcomeFailed, "FR-1.1", "FR-1.2"),
	)
	b := fragment(record("pkg.TestB", OutcomePassed, "BR-3"))

	merged := Merge([]Snapshot{a, b})

	known := make(map[string]bool)
	for _, rec := range merged.Records {
		known[rec.Identity] = true
		for req := range rec.Requirements {
			assert.Contains(t, merged.Index, req)
		}
	}
	for _, tests := range merged.Index {
		for _, identity := range tests {
			assert.True(t, known[identity], "index references unknown test %s", identity)
		}
	}
}
