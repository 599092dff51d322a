package features

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// sharedContext holds ALL state for a scenario - used by all step definitions
type sharedContext struct {
	output      string
	exitCode    int
	tempDir     string
	treqtBinary string
}

// builtBinary is set by the suite once it has built the treqt binary
var builtBinary string

// initTreqtBinary finds and sets the treqt binary path
func (c *sharedContext) initTreqtBinary() {
	if c.treqtBinary != "" {
		return
	}
	if builtBinary != "" {
		c.treqtBinary = builtBinary
		return
	}
	wd, _ := os.Getwd()
	c.treqtBinary = filepath.Join(wd, "..", "treqt")
	if _, err := os.Stat(c.treqtBinary); os.IsNotExist(err) {
		c.treqtBinary = filepath.Join(wd, "treqt")
	}
}

// initTempDir creates the scenario workspace
func (c *sharedContext) initTempDir() error {
	if c.tempDir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "treqt-features-*")
	if err != nil {
		return err
	}
	c.tempDir = dir
	return nil
}

// writeFile writes a file relative to the scenario workspace
func (c *sharedContext) writeFile(rel, content string) error {
	if err := c.initTempDir(); err != nil {
		return err
	}
	path := filepath.Join(c.tempDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// runTreqt executes treqt with the given arguments and stores output
func (c *sharedContext) runTreqt(args ...string) error {
	if err := c.initTempDir(); err != nil {
		return err
	}
	c.initTreqtBinary()

	cmd := exec.Command(c.treqtBinary, args...)
	cmd.Dir = c.tempDir
	output, err := cmd.CombinedOutput()
	c.output = string(output)

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			c.exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("failed to run treqt: %w", err)
		}
	} else {
		c.exitCode = 0
	}

	return nil
}

// theExecutionShouldSucceed checks that the command succeeded
func (c *sharedContext) theExecutionShouldSucceed() error {
	if c.exitCode != 0 {
		return fmt.Errorf("expected execution to succeed (exit 0), got exit code %d\nOutput: %s", c.exitCode, c.output)
	}
	return nil
}

// theExecutionShouldFail checks that the command failed
func (c *sharedContext) theExecutionShouldFail() error {
	if c.exitCode == 0 {
		return fmt.Errorf("expected execution to fail (non-zero exit), got exit code 0\nOutput: %s", c.output)
	}
	return nil
}

// theOutputShouldContain checks that output contains the expected string (case-insensitive)
func (c *sharedContext) theOutputShouldContain(expected string) error {
	expected = strings.Trim(expected, `"`)
	if !strings.Contains(strings.ToLower(c.output), strings.ToLower(expected)) {
		return fmt.Errorf("expected output to contain %q, got: %s", expected, c.output)
	}
	return nil
}

// theOutputShouldNotContain checks that output does not contain the string
func (c *sharedContext) theOutputShouldNotContain(unexpected string) error {
	unexpected = strings.Trim(unexpected, `"`)
	if strings.Contains(strings.ToLower(c.output), strings.ToLower(unexpected)) {
		return fmt.Errorf("expected output not to contain %q, got: %s", unexpected, c.output)
	}
	return nil
}

// cleanup removes temporary directories
func (c *sharedContext) cleanup() {
	if c.tempDir != "" {
		_ = os.RemoveAll(c.tempDir)
	}
}
