package report

import (
	"bytes"
	"testing"

	"github.com/acarl005/stripansi"
	"github.com/stretchr/testify/assert"

	"github.com/drew/treqt/internal/changes"
	"github.com/drew/treqt/internal/coverage"
	"github.com/drew/treqt/internal/gitinfo"
	"github.com/drew/treqt/internal/store"
	"github.com/drew/treqt/internal/ui"
)

func TestRenderShow(t *testing.T) {
	data := &store.CoverageData{
		CommandInfo: coverage.ExecutionContext{
			Command:   "treqt run",
			Timestamp: "2025-03-01 10:00:00",
			Database:  "SQLite",
			Git: gitinfo.Info{
				Branch:      "main",
				CommitShort: "abc1234",
				Clean:       true,
			},
			EnvironmentVars: map[string]string{"CI": "true"},
		},
		Requirements: map[string][]store.TestEntry{
			"FR-1.1": {
				{TestName: "TestCreate", FullName: "pkg.TestCreate", Result: "passed"},
				{TestName: "TestReject", FullName: "pkg.TestReject", Result: "failed"},
				{TestName: "TestSlow", FullName: "pkg.TestSlow", Result: "skipped"},
			},
		},
		Summary: store.Summary{TotalTests: 3, TotalRequirements: 1},
	}

	var buf bytes.Buffer
	RenderShow(&buf, data, ui.NewColors(false))
	out := stripansi.Strip(buf.String())

	assert.Contains(t, out, "Requirements Coverage (Last Run)")
	assert.Contains(t, out, "Database: SQLite")
	assert.Contains(t, out, "Git: main@abc1234 (clean)")
	assert.Contains(t, out, "Environment: CI=true")
	assert.Contains(t, out, "FR-1.1:")
	assert.Contains(t, out, "✓ TestCreate")
	assert.Contains(t, out, "✗ TestReject")
	assert.Contains(t, out, "⊝ TestSlow")
	assert.Contains(t, out, "Tests with requirements: 3")
	assert.Contains(t, out, "Requirements covered: 1")
}

func TestRenderChangeReportNoChanges(t *testing.T) {
	var buf bytes.Buffer
	RenderChangeReport(&buf, changes.Report{}, ui.NewColors(false))

	assert.Contains(t, stripansi.Strip(buf.String()), "No changes detected")
}

func TestRenderChangeReport(t *testing.T) {
	report := changes.Report{
		DocumentChanged: true,
		Added:           []string{"FR-2.1"},
		Modified:        []string{"FR-1.1"},
		Removed:         []string{"BR-3"},
		AffectedTests:   []string{"pkg/a.TestCreate", "pkg/a.TestCreate/edge", "pkg/b.TestRule"},
	}

	var buf bytes.Buffer
	RenderChangeReport(&buf, report, ui.NewColors(false))
	out := stripansi.Strip(buf.String())

	assert.Contains(t, out, "Requirements changes detected")
	assert.Contains(t, out, "Added Requirements:")
	assert.Contains(t, out, "- FR-2.1")
	assert.Contains(t, out, "Modified Requirements:")
	assert.Contains(t, out, "Removed Requirements:")
	assert.Contains(t, out, "Tests that may need review:")
	assert.Contains(t, out, "Total impact: 3 tests may need review")
}

func TestRunFilter(t *testing.T) {
	identities := []string{
		"pkg/a.TestCreate",
		"pkg/a.TestCreate/edge",
		"pkg/b.TestRule",
		"pkg/c.TestOne",
		"pkg/c.TestTwo",
		"pkg/c.TestThree",
		"pkg/c.TestFour",
	}

	got := runFilter(identities)

	// Subtests collapse to their parent function and at most five names appear
	assert.Equal(t, "`go test -run \"TestCreate|TestRule|TestOne|TestTwo|TestThree\" ./...`", got)
}
