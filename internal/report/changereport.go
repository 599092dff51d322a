package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/drew/treqt/internal/changes"
	"github.com/drew/treqt/internal/store"
	"github.com/drew/treqt/internal/ui"
)

// RenderChangeReport prints a human-readable requirement change report,
// ending with a go test invocation scoped to the affected tests.
func RenderChangeReport(w io.Writer, report changes.Report, colors *ui.Colors) {
	if !report.HasChanges() {
		fmt.Fprintln(w, colors.Green("✅ No changes detected in requirements"))
		return
	}

	fmt.Fprintln(w, colors.Bold("🔍 Requirements changes detected!"))
	fmt.Fprintln(w)

	sections := []struct {
		title string
		ids   []string
		color func(string) string
	}{
		{"➕ Added Requirements:", report.Added, colors.Green},
		{"✏️  Modified Requirements:", report.Modified, colors.Yellow},
		{"❌ Removed Requirements:", report.Removed, colors.Red},
	}
	for _, section := range sections {
		if len(section.ids) == 0 {
			continue
		}
		fmt.Fprintln(w, section.color(section.title))
		for _, id := range section.ids {
			fmt.Fprintf(w, "   - %s\n", id)
		}
		fmt.Fprintln(w)
	}

	if len(report.AffectedTests) > 0 {
		fmt.Fprintln(w, colors.Cyan("🧪 Tests that may need review:"))
		for _, test := range report.AffectedTests {
			fmt.Fprintf(w, "   - %s\n", test)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "💡 Consider running: %s\n", colors.Bold(runFilter(report.AffectedTests)))
	} else {
		fmt.Fprintln(w, "ℹ️  No tests directly affected by requirement changes")
	}

	fmt.Fprintf(w, "\n📊 Total impact: %d tests may need review\n", len(report.AffectedTests))
}

// runFilter builds a go test -run expression matching up to five of the
// affected test functions.
func runFilter(identities []string) string {
	seen := make(map[string]bool)
	var names []string
	for _, identity := range identities {
		name := store.ShortName(identity)
		// -run matches top-level functions; drop subtest segments
		if i := strings.Index(name, "/"); i >= 0 {
			name = name[:i]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == 5 {
			break
		}
	}
	return fmt.Sprintf("`go test -run \"%s\" ./...`", strings.Join(names, "|"))
}
