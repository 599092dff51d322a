package coverage

import (
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drew/treqt/internal/gitinfo"
)

// PlatformInfo describes the host toolchain
type PlatformInfo struct {
	System    string `json:"system"`
	Arch      string `json:"arch"`
	GoVersion string `json:"go_version"`
}

// ExecutionContext is immutable metadata captured once per run. It is purely
// descriptive and never affects coverage logic.
type ExecutionContext struct {
	RunID            string            `json:"run_id"`
	Command          string            `json:"command"`
	Timestamp        string            `json:"timestamp"`
	Database         string            `json:"database"`
	WorkingDirectory string            `json:"working_directory"`
	User             string            `json:"user"`
	Hostname         string            `json:"hostname"`
	Platform         PlatformInfo      `json:"platform"`
	EnvironmentVars  map[string]string `json:"environment_variables,omitempty"`
	Git              gitinfo.Info      `json:"git"`
}

// relevantEnvVars are recorded in the context when set
var relevantEnvVars = []string{
	"TEST_DATABASE",
	"DATABASE_URL",
	"CI",
	"GITHUB_ACTIONS",
	"GOFLAGS",
}

// CaptureContext collects the execution context for the current process
func CaptureContext(database string) ExecutionContext {
	cwd, _ := os.Getwd()
	hostname, _ := os.Hostname()

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	envVars := make(map[string]string)
	for _, v := range relevantEnvVars {
		if val, ok := os.LookupEnv(v); ok {
			envVars[v] = val
		}
	}
	if len(envVars) == 0 {
		envVars = nil
	}

	return ExecutionContext{
		RunID:            uuid.New().String(),
		Command:          strings.Join(os.Args, " "),
		Timestamp:        time.Now().Format("2006-01-02 15:04:05"),
		Database:         database,
		WorkingDirectory: cwd,
		User:             username,
		Hostname:         hostname,
		Platform: PlatformInfo{
			System:    runtime.GOOS,
			Arch:      runtime.GOARCH,
			GoVersion: runtime.Version(),
		},
		EnvironmentVars: envVars,
		Git:             gitinfo.Capture(cwd),
	}
}
