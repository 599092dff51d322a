package features

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
)

// InitializeCoverageScenario wires steps for coverage matrix scenarios
func InitializeCoverageScenario(sc *godog.ScenarioContext, c *sharedContext) {
	sc.Step(`^the file "([^"]*)" should exist$`, func(rel string) error {
		path := filepath.Join(c.tempDir, rel)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("expected %s to exist: %v", rel, err)
		}
		return nil
	})

	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, func(rel, expected string) error {
		content, err := os.ReadFile(filepath.Join(c.tempDir, rel))
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", rel, err)
		}
		if !strings.Contains(string(content), expected) {
			return fmt.Errorf("expected %s to contain %q, got: %s", rel, expected, content)
		}
		return nil
	})
}
