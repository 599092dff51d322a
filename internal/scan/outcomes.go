package scan

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	junit "github.com/joshdk/go-junit"
	"golang.org/x/sync/errgroup"

	"github.com/drew/treqt/internal/coverage"
)

// TestOutcome is one executed test's terminal result as reported by a
// JUnit fragment.
type TestOutcome struct {
	Identity string
	Outcome  coverage.Outcome
}

// Fragment is the parsed content of one worker's JUnit report file
type Fragment struct {
	Path     string
	Outcomes []TestOutcome
}

// FindReports resolves the report globs to a sorted list of fragment paths
func FindReports(root string, globs []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var reports []string

	for _, glob := range globs {
		matches, err := doublestar.Glob(fsys, glob)
		if err != nil {
			return nil, fmt.Errorf("invalid report glob %q: %w", glob, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			reports = append(reports, m)
		}
	}

	sort.Strings(reports)
	return reports, nil
}

// IngestReports parses every fragment file concurrently. The returned
// fragments preserve the order of paths so merges stay deterministic.
func IngestReports(paths []string) ([]Fragment, error) {
	fragments := make([]Fragment, len(paths))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(maxParsers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			frag, err := IngestReport(path)
			if err != nil {
				return err
			}
			mu.Lock()
			fragments[i] = frag
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fragments, nil
}

// IngestReport parses one JUnit XML file into per-test outcomes
func IngestReport(path string) (Fragment, error) {
	suites, err := junit.IngestFile(path)
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to parse JUnit report %s: %w", path, err)
	}

	frag := Fragment{Path: path}
	for _, suite := range suites {
		for _, test := range suite.Tests {
			identity := test.Name
			if test.Classname != "" {
				identity = test.Classname + "." + test.Name
			}
			frag.Outcomes = append(frag.Outcomes, TestOutcome{
				Identity: identity,
				Outcome:  mapStatus(test.Status),
			})
		}
	}
	return frag, nil
}

func mapStatus(status junit.Status) coverage.Outcome {
	switch status {
	case junit.StatusPassed:
		return coverage.OutcomePassed
	case junit.StatusFailed, junit.StatusError:
		return coverage.OutcomeFailed
	case junit.StatusSkipped:
		return coverage.OutcomeSkipped
	default:
		return coverage.OutcomeUnknown
	}
}
