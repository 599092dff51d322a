// Package gitinfo captures version-control state for the execution context.
package gitinfo

import (
	"bytes"
	"os/exec"
	"strings"
)

// Info holds git metadata for a run. Purely descriptive; coverage logic
// never depends on it.
type Info struct {
	Branch      string `json:"branch,omitempty"`
	Commit      string `json:"commit,omitempty"`
	CommitShort string `json:"commit_short,omitempty"`
	Clean       bool   `json:"clean"`
	Error       string `json:"error,omitempty"`
}

// Capture collects branch, commit and dirty/clean state for dir.
// Outside a git repository the Error field is set and everything else
// is left empty.
func Capture(dir string) Info {
	branch, err := runGit(dir, "branch", "--show-current")
	if err != nil {
		return Info{Error: "Git not available or not a git repository"}
	}

	commit, err := runGit(dir, "rev-parse", "HEAD")
	if err != nil {
		return Info{Error: "Git not available or not a git repository"}
	}

	info := Info{
		Branch: branch,
		Commit: commit,
	}
	if len(commit) >= 8 {
		info.CommitShort = commit[:8]
	} else {
		info.CommitShort = commit
	}

	status, err := runGit(dir, "status", "--porcelain")
	info.Clean = err == nil && status == ""

	return info
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &bytes.Buffer{}

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
