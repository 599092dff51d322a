package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/drew/treqt/internal/store"
	"github.com/drew/treqt/internal/ui"
)

// RenderShow prints the cached coverage snapshot: the execution context the
// run was captured under, then each requirement with its tests and outcomes.
func RenderShow(w io.Writer, data *store.CoverageData, colors *ui.Colors) {
	fmt.Fprintln(w, colors.Green("Requirements Coverage (Last Run)"))
	fmt.Fprintln(w)

	ctx := data.CommandInfo
	if ctx.Timestamp != "" || ctx.Command != "" {
		fmt.Fprintln(w, colors.Gray("Database: "+orUnknown(ctx.Database)))
		fmt.Fprintln(w, colors.Gray("Generated: "+orUnknown(ctx.Timestamp)))
		fmt.Fprintln(w, colors.Gray("Command: "+orUnknown(ctx.Command)))

		if ctx.Git.Error == "" && ctx.Git.Branch != "" {
			state := "dirty"
			if ctx.Git.Clean {
				state = "clean"
			}
			fmt.Fprintln(w, colors.Gray(fmt.Sprintf("Git: %s@%s (%s)", ctx.Git.Branch, ctx.Git.CommitShort, state)))
		}

		if len(ctx.EnvironmentVars) > 0 {
			keys := make([]string, 0, len(ctx.EnvironmentVars))
			for k := range ctx.EnvironmentVars {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+"="+ctx.EnvironmentVars[k])
			}
			fmt.Fprintln(w, colors.Gray("Environment: "+strings.Join(pairs, ", ")))
		}
		fmt.Fprintln(w)
	}

	reqs := make([]string, 0, len(data.Requirements))
	for req := range data.Requirements {
		reqs = append(reqs, req)
	}
	sort.Strings(reqs)

	for _, req := range reqs {
		fmt.Fprintf(w, "  %s:\n", req)
		for _, entry := range data.Requirements[req] {
			fmt.Fprintf(w, "    %s %s\n", colors.OutcomeSymbol(entry.Result), entry.TestName)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, colors.Cyan("Requirements Coverage Summary:"))
	fmt.Fprintf(w, "  Tests with requirements: %d\n", data.Summary.TotalTests)
	fmt.Fprintf(w, "  Requirements covered: %d\n", data.Summary.TotalRequirements)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
