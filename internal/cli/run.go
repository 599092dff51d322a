package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drew/treqt/internal/coverage"
	"github.com/drew/treqt/internal/report"
	"github.com/drew/treqt/internal/scan"
	"github.com/drew/treqt/internal/store"
)

// ErrTestsFailed signals that the run completed but some tests failed.
// Coverage is still collected and persisted before this is returned.
var ErrTestsFailed = errors.New("tests failed")

func runCmd(app *App) *cobra.Command {
	var noRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test suite and collect requirements coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(app, noRun)
		},
	}

	cmd.Flags().BoolVar(&noRun, "no-run", false, "skip test execution, ingest existing reports only")

	return cmd
}

// runSuite is the full collection pipeline: scan test documentation, fan the
// suite out across workers, ingest their JUnit fragments, merge everything
// into one snapshot and persist it.
func runSuite(app *App, noRun bool) error {
	docs, err := scan.ScanTests(".", app.Config.Run.TestGlobs)
	if err != nil {
		return err
	}

	docIndex := make(map[string]string, len(docs))
	for _, d := range docs {
		docIndex[d.Identity] = d.Doc
	}

	ctx := coverage.CaptureContext(app.Config.DatabaseType())

	// The base fragment holds every documented test with an unknown
	// outcome, so tests that never report still appear in the snapshot.
	base := coverage.NewCollector(app.Matcher, app.Registry)
	for _, d := range docs {
		if err := base.ObserveDocumentation(d.Identity, d.Doc); err != nil {
			return err
		}
	}

	var failed bool
	if !noRun {
		fragmentDir := filepath.Join(app.Config.CacheDir, "reports")
		results, err := scan.RunWorkers(
			app.Config.Run.TestCommand,
			app.Config.Run.Packages,
			fragmentDir,
			app.Config.Run.Workers,
			app.Verbose,
		)
		if err != nil {
			return err
		}
		failed = scan.Failed(results)
	}

	reportPaths, err := scan.FindReports(".", app.Config.Run.ReportGlobs)
	if err != nil {
		return err
	}
	reportFrags, err := scan.IngestReports(reportPaths)
	if err != nil {
		return err
	}

	snapshots := []coverage.Snapshot{base.Snapshot(ctx)}
	for _, frag := range reportFrags {
		snap, err := fragmentSnapshot(app, frag, docIndex, ctx)
		if err != nil {
			return err
		}
		snapshots = append(snapshots, snap)
	}

	merged := coverage.Merge(snapshots)
	merged.Context = ctx

	if merged.Empty() {
		fmt.Fprintln(app.Out, app.Colors.Gray("No tests with requirement references found"))
	} else {
		if err := app.Store.WriteCoverage(merged); err != nil {
			var perr *store.PersistenceError
			if errors.As(err, &perr) {
				fmt.Fprintln(app.Out, app.Colors.Yellow("⚠️  "+perr.Error()))
			} else {
				return err
			}
		}
		report.RenderShow(app.Out, encode(merged), app.Colors)
	}

	if failed {
		return ErrTestsFailed
	}
	return nil
}

// fragmentSnapshot rebuilds one worker's coverage fragment from its JUnit
// outcomes and the scanned documentation.
func fragmentSnapshot(app *App, frag scan.Fragment, docIndex map[string]string, ctx coverage.ExecutionContext) (coverage.Snapshot, error) {
	collector := coverage.NewCollector(app.Matcher, app.Registry)
	for _, outcome := range frag.Outcomes {
		doc, documented := lookupDoc(docIndex, outcome.Identity)
		if !documented {
			continue
		}
		if err := collector.ObserveDocumentation(outcome.Identity, doc); err != nil {
			return coverage.Snapshot{}, err
		}
		collector.RecordOutcome(outcome.Identity, coverage.PhaseCall, outcome.Outcome)
	}
	return collector.Snapshot(ctx), nil
}

// lookupDoc resolves a test identity to its doc comment. Subtests inherit
// the documentation of their parent test function.
func lookupDoc(docIndex map[string]string, identity string) (string, bool) {
	if doc, ok := docIndex[identity]; ok {
		return doc, true
	}
	if i := strings.Index(identity, "/"); i >= 0 {
		doc, ok := docIndex[identity[:i]]
		return doc, ok
	}
	return "", false
}

func encode(snap coverage.Snapshot) *store.CoverageData {
	data := store.EncodeSnapshot(snap)
	return &data
}
