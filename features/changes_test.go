package features

import (
	"fmt"

	"github.com/cucumber/godog"
)

// InitializeChangesScenario wires steps for change detection scenarios
func InitializeChangesScenario(sc *godog.ScenarioContext, c *sharedContext) {
	sc.Step(`^the requirements baseline has been recorded$`, func() error {
		// The first changes run records hashes and exits 1; that exit
		// code is part of recording, not a failure.
		if err := c.runTreqt("changes"); err != nil {
			return err
		}
		if c.exitCode != 0 && c.exitCode != 1 {
			return fmt.Errorf("unexpected exit code %d recording baseline\nOutput: %s", c.exitCode, c.output)
		}
		return nil
	})

	sc.Step(`^the requirements file is rewritten to:$`, func(doc *godog.DocString) error {
		return c.writeFile("requirements.md", doc.Content+"\n")
	})
}
