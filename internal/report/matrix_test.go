package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew/treqt/internal/coverage"
	"github.com/drew/treqt/internal/requirements"
	"github.com/drew/treqt/internal/store"
)

type fixture struct {
	dir       string
	registry  *requirements.Registry
	store     *store.Store
	generator *MatrixGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	matcher, err := requirements.NewMatcher([]string{`FR-\d+\.?\d*`, `BR-\d+\.?\d*`})
	require.NoError(t, err)

	reqPath := filepath.Join(dir, "requirements.md")
	registry := requirements.NewRegistry(reqPath, matcher)
	st := store.New(filepath.Join(dir, ".treqt"))

	return &fixture{
		dir:       dir,
		registry:  registry,
		store:     st,
		generator: NewMatrixGenerator(registry, st, filepath.Join(dir, "TEST_COVERAGE.md")),
	}
}

func (f *fixture) writeDoc(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.registry.Path(), []byte(content), 0644))
}

func (f *fixture) writeSnapshot(t *testing.T, snap coverage.Snapshot) {
	t.Helper()
	require.NoError(t, f.store.WriteCoverage(snap))
}

func sampleSnapshot() coverage.Snapshot {
	return coverage.Snapshot{
		Records: []coverage.TestRecord{
			{
				Identity:     "example.com/proj/internal/orders.TestCreateOrder",
				Requirements: requirements.NewIDSet("FR-1.1"),
				Outcome:      coverage.OutcomePassed,
			},
			{
				Identity:     "example.com/proj/internal/orders.TestDeleteOrder",
				Requirements: requirements.NewIDSet("FR-1.2"),
				Outcome:      coverage.OutcomeFailed,
			},
		},
		Index: map[string][]string{
			"FR-1.1": {"example.com/proj/internal/orders.TestCreateOrder"},
			"FR-1.2": {"example.com/proj/internal/orders.TestDeleteOrder"},
		},
	}
}

func TestGenerateMatrix(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "- **FR-1.1**: Create orders\n- **FR-1.2**: Delete orders\n- **BR-1**: Orders are immutable\n")
	f.writeSnapshot(t, sampleSnapshot())

	content, err := f.generator.Generate()
	require.NoError(t, err)

	assert.Contains(t, content, "# Test Coverage Matrix")
	assert.Contains(t, content, "- **Total Requirements**: 3")
	assert.Contains(t, content, "- **Requirements with Tests**: 1")
	assert.Contains(t, content, "**Coverage Percentage**: 33.3%")

	// Passing test counts as coverage
	assert.Contains(t, content, "### FR-1.1: Create orders")
	assert.Contains(t, content, "- `TestCreateOrder`")

	// Failed test does not
	assert.Contains(t, content, "### FR-1.2: Delete orders")
	assert.Contains(t, content, "## Requirements Needing Tests")
	assert.Contains(t, content, "- **FR-1.2**: Delete orders")
	assert.Contains(t, content, "- **BR-1**: Orders are immutable")
}

func TestGenerateMatrixNoRequirements(t *testing.T) {
	f := newFixture(t)

	_, err := f.generator.Generate()
	assert.Error(t, err)
}

func TestGenerateMatrixNoCoverage(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "- **FR-1.1**: Create orders\n")

	content, err := f.generator.Generate()
	require.NoError(t, err)

	assert.Contains(t, content, "**Coverage Percentage**: 0.0%")
	assert.Contains(t, content, "⚠️ *This requirement needs test coverage*")
	assert.Contains(t, content, "- **Average Tests per Requirement**: 0")
}

func TestMatrixTimestampPreservedWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "- **FR-1.1**: Create orders\n- **FR-1.2**: Delete orders\n")
	f.writeSnapshot(t, sampleSnapshot())

	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	f.generator.now = func() time.Time { return day1 }
	require.NoError(t, f.generator.Write())

	// Regenerating with identical coverage keeps the old date
	f.generator.now = func() time.Time { return day2 }
	require.NoError(t, f.generator.Write())

	content, err := os.ReadFile(f.generator.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "**Last updated**: 2025-03-01")
}

func TestMatrixTimestampAdvancesOnChange(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "- **FR-1.1**: Create orders\n- **FR-1.2**: Delete orders\n")
	f.writeSnapshot(t, sampleSnapshot())

	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	f.generator.now = func() time.Time { return day1 }
	require.NoError(t, f.generator.Write())

	// A second requirement gains coverage
	snap := sampleSnapshot()
	snap.Records[1].Outcome = coverage.OutcomePassed
	f.writeSnapshot(t, snap)

	f.generator.now = func() time.Time { return day2 }
	require.NoError(t, f.generator.Write())

	content, err := os.ReadFile(f.generator.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "**Last updated**: 2025-03-05")
}

func TestPassingCoverage(t *testing.T) {
	data := &store.CoverageData{
		Requirements: map[string][]store.TestEntry{
			"FR-1.1": {
				{TestName: "TestB", FullName: "pkg.TestB", Result: "passed"},
				{TestName: "TestA", FullName: "pkg.TestA", Result: "passed"},
				{TestName: "TestA", FullName: "other.TestA", Result: "passed"},
				{TestName: "TestC", FullName: "pkg.TestC", Result: "failed"},
			},
			"FR-1.2": {
				{TestName: "TestC", FullName: "pkg.TestC", Result: "skipped"},
			},
		},
	}

	cov := PassingCoverage(data)

	// Sorted, deduplicated, passing only
	assert.Equal(t, []string{"TestA", "TestB"}, cov["FR-1.1"])
	// A requirement with no passing tests is not covered
	_, ok := cov["FR-1.2"]
	assert.False(t, ok)
}

func TestPassingCoverageNilData(t *testing.T) {
	assert.Empty(t, PassingCoverage(nil))
}
