// Package report renders coverage artifacts: the Markdown coverage matrix,
// statistics in several formats, and terminal views of cached run data.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/drew/treqt/internal/requirements"
	"github.com/drew/treqt/internal/store"
)

// MatrixGenerator renders the requirements-to-tests coverage matrix
type MatrixGenerator struct {
	registry *requirements.Registry
	store    *store.Store
	outPath  string
	now      func() time.Time
}

// NewMatrixGenerator creates a generator writing to outPath
func NewMatrixGenerator(registry *requirements.Registry, st *store.Store, outPath string) *MatrixGenerator {
	return &MatrixGenerator{
		registry: registry,
		store:    st,
		outPath:  outPath,
		now:      time.Now,
	}
}

// PassingCoverage maps each requirement to the sorted, deduplicated short
// names of its passing tests. Failed and skipped tests do not count as
// coverage in the matrix.
func PassingCoverage(data *store.CoverageData) map[string][]string {
	cov := make(map[string][]string)
	if data == nil {
		return cov
	}

	for req, entries := range data.Requirements {
		seen := make(map[string]bool)
		var tests []string
		for _, entry := range entries {
			if entry.Result != "passed" || seen[entry.TestName] {
				continue
			}
			seen[entry.TestName] = true
			tests = append(tests, entry.TestName)
		}
		if len(tests) > 0 {
			sort.Strings(tests)
			cov[req] = tests
		}
	}

	return cov
}

// Generate renders the matrix document from the requirements document and
// the cached coverage snapshot.
func (g *MatrixGenerator) Generate() (string, error) {
	reqs := g.registry.Descriptions()
	if len(reqs) == 0 {
		return "", fmt.Errorf("no requirements found in %s", g.registry.Path())
	}

	cov := PassingCoverage(g.store.ReadCoverage())
	timestamp := g.timestamp(len(reqs), len(cov))

	var b strings.Builder
	b.WriteString("# Test Coverage Matrix\n\n")
	b.WriteString("This document shows the traceability between requirements and test cases.\n\n")
	fmt.Fprintf(&b, "**Last updated**: %s\n\n", timestamp)

	b.WriteString("## Coverage Summary\n\n")
	fmt.Fprintf(&b, "- **Total Requirements**: %d\n", len(reqs))
	fmt.Fprintf(&b, "- **Requirements with Tests**: %d\n", len(cov))
	fmt.Fprintf(&b, "- **Requirements without Tests**: %d\n\n", len(reqs)-len(cov))
	fmt.Fprintf(&b, "**Coverage Percentage**: %.1f%%\n\n", percentage(len(cov), len(reqs)))

	b.WriteString("## Requirements Coverage\n\n")

	ids := make([]string, 0, len(reqs))
	for id := range reqs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		tests := cov[id]
		fmt.Fprintf(&b, "### %s: %s\n", id, reqs[id])
		if len(tests) > 0 {
			b.WriteString("**Status**: ✅ **Tested**\n\n")
			b.WriteString("**Test Cases**:\n")
			for _, test := range tests {
				fmt.Fprintf(&b, "- `%s`\n", test)
			}
			b.WriteString("\n")
		} else {
			b.WriteString("**Status**: ❌ **Not Tested**\n\n")
			b.WriteString("**Test Cases**: None\n")
			b.WriteString("⚠️ *This requirement needs test coverage*\n\n")
		}
	}

	var untested []string
	for _, id := range ids {
		if _, ok := cov[id]; !ok {
			untested = append(untested, id)
		}
	}
	if len(untested) > 0 {
		b.WriteString("## Requirements Needing Tests\n\n")
		b.WriteString("The following requirements have no test coverage:\n\n")
		for _, id := range untested {
			fmt.Fprintf(&b, "- **%s**: %s\n", id, reqs[id])
		}
		b.WriteString("\n")
	}

	totalTests := 0
	for _, tests := range cov {
		totalTests += len(tests)
	}
	b.WriteString("## Test Statistics\n\n")
	fmt.Fprintf(&b, "- **Total Test Cases with Requirements**: %d\n", totalTests)
	fmt.Fprintf(&b, "- **Unique Requirements Tested**: %d\n", len(cov))
	if len(cov) > 0 {
		fmt.Fprintf(&b, "- **Average Tests per Requirement**: %.1f\n", float64(totalTests)/float64(len(cov)))
	} else {
		b.WriteString("- **Average Tests per Requirement**: 0\n")
	}
	b.WriteString("\n---\n\n")
	b.WriteString("*This file is auto-generated by treqt*\n")
	b.WriteString("*To update, run: `treqt coverage`*\n")

	return b.String(), nil
}

// Write renders the matrix and writes it to the configured path
func (g *MatrixGenerator) Write() error {
	content, err := g.Generate()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(g.outPath, []byte(content), 0o644)
}

// Path returns where the matrix document is written
func (g *MatrixGenerator) Path() string {
	return g.outPath
}

var (
	updatedRe  = regexp.MustCompile(`Last updated\*\*:\s*([^*\n]+)`)
	totalRe    = regexp.MustCompile(`Total Requirements\*\*:\s*(\d+)`)
	testedRe   = regexp.MustCompile(`Requirements with Tests\*\*:\s*(\d+)`)
	coverageRe = regexp.MustCompile(`Coverage Percentage\*\*:\s*([\d.]+)%`)
)

// timestamp keeps the previous document's date when the summary metrics did
// not move, so a regenerated matrix with identical coverage diffs clean.
func (g *MatrixGenerator) timestamp(total, tested int) string {
	today := g.now().Format("2006-01-02")

	raw, err := os.ReadFile(g.outPath)
	if err != nil {
		return today
	}
	content := string(raw)

	prevUpdated := submatch(updatedRe, content)
	prevTotal, okTotal := atoi(submatch(totalRe, content))
	prevTested, okTested := atoi(submatch(testedRe, content))
	prevPct, errPct := strconv.ParseFloat(submatch(coverageRe, content), 64)

	if prevUpdated == "" || !okTotal || !okTested || errPct != nil {
		return today
	}

	pct := percentage(tested, total)
	changed := prevTotal != total ||
		prevTested != tested ||
		prevPct < pct-0.1 || prevPct > pct+0.1
	if changed {
		return today
	}
	return strings.TrimSpace(prevUpdated)
}

func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
