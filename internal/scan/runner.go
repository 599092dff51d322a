package scan

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WorkerResult records one worker's test invocation
type WorkerResult struct {
	Package   string
	JUnitPath string
	ExitCode  int
}

// RunWorkers executes the test command once per package, in parallel, each
// worker writing its own JUnit fragment under fragmentDir. {package} and
// {junit} in the command template are substituted per worker. A non-zero
// exit is a normal result (failing tests), captured in the fragment, not an
// error here.
//
// fragmentDir is owned by the run: any fragments left over from a previous
// run are removed first, so a shrunken package list cannot resurrect stale
// outcomes at ingestion time.
func RunWorkers(template string, packages []string, fragmentDir string, workers int, verbose bool) ([]WorkerResult, error) {
	if err := os.RemoveAll(fragmentDir); err != nil {
		return nil, fmt.Errorf("failed to clear fragment directory: %w", err)
	}
	if err := os.MkdirAll(fragmentDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create fragment directory: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]WorkerResult, len(packages))

	var outputMu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, pkg := range packages {
		i, pkg := i, pkg
		g.Go(func() error {
			junitPath := filepath.Join(fragmentDir, fmt.Sprintf("junit-%03d.xml", i))
			command := strings.ReplaceAll(template, "{package}", pkg)
			command = strings.ReplaceAll(command, "{junit}", junitPath)

			cmd := exec.Command("sh", "-c", command)
			var out bytes.Buffer
			cmd.Stdout = &out
			cmd.Stderr = &out

			err := cmd.Run()

			exitCode := 0
			if err != nil {
				var ee *exec.ExitError
				if errors.As(err, &ee) {
					exitCode = ee.ExitCode()
				} else {
					return fmt.Errorf("failed to run tests for %s: %w", pkg, err)
				}
			}

			if verbose {
				outputMu.Lock()
				fmt.Printf("[%s] exit %d\n", pkg, exitCode)
				if out.Len() > 0 {
					fmt.Print(out.String())
				}
				outputMu.Unlock()
			}

			results[i] = WorkerResult{
				Package:   pkg,
				JUnitPath: junitPath,
				ExitCode:  exitCode,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Failed reports whether any worker's tests failed
func Failed(results []WorkerResult) bool {
	for _, r := range results {
		if r.ExitCode != 0 {
			return true
		}
	}
	return false
}
