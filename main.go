// treqt - requirements traceability for Go test suites.
//
// Requirement identifiers cited in test doc comments are validated against
// the requirements document and tracked through test runs.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/drew/treqt/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		// Changes and test failures signal through the exit code alone;
		// the commands already rendered their reports.
		if !errors.Is(err, cli.ErrChangesDetected) && !errors.Is(err, cli.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
