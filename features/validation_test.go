package features

import (
	"context"
	"strings"

	"github.com/cucumber/godog"
)

const defaultRequirements = `# Requirements

## Functional Requirements

- **FR-1.1**: Users can log in with a password
- **FR-1.2**: Users can log out

## Business Rules

- **BR-1**: Sessions expire after 30 minutes
`

// InitializeValidationScenario wires steps for validate and config scenarios
func InitializeValidationScenario(sc *godog.ScenarioContext, c *sharedContext) {
	sc.Step(`^a project with a requirements file$`, func() error {
		return c.writeFile("requirements.md", defaultRequirements)
	})
	sc.Step(`^a requirements file containing:$`, func(doc *godog.DocString) error {
		return c.writeFile("requirements.md", doc.Content+"\n")
	})
	sc.Step(`^a config file containing:$`, func(doc *godog.DocString) error {
		return c.writeFile("treqt.toml", doc.Content+"\n")
	})
	sc.Step(`^I run "treqt ?([^"]*)"$`, func(args string) error {
		fields := strings.Fields(args)
		return c.runTreqt(fields...)
	})
	sc.Step(`^the execution should succeed$`, c.theExecutionShouldSucceed)
	sc.Step(`^the execution should fail$`, c.theExecutionShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, c.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, c.theOutputShouldNotContain)

	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		c.cleanup()
		return ctx, nil
	})
}
