package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/drew/treqt/internal/requirements"
	"github.com/drew/treqt/internal/store"
	"github.com/drew/treqt/internal/ui"
)

// CategoryStats is the per-category slice of the coverage totals
type CategoryStats struct {
	Name     string  `json:"name"`
	Prefix   string  `json:"prefix"`
	Tested   int     `json:"tested"`
	Total    int     `json:"total"`
	Coverage float64 `json:"coverage"`
}

// Stats summarizes requirement coverage from the cached snapshot
type Stats struct {
	TotalRequirements  int             `json:"total_requirements"`
	TestedRequirements int             `json:"tested_requirements"`
	UntestedCount      int             `json:"untested_requirements"`
	CoveragePercentage float64         `json:"coverage_percentage"`
	Tested             []string        `json:"tested"`
	Untested           []string        `json:"untested"`
	Categories         []CategoryStats `json:"-"`
}

// ComputeStats derives coverage statistics from the requirements document
// and the last persisted coverage snapshot. Only passing tests count.
func ComputeStats(registry *requirements.Registry, data *store.CoverageData, patterns []string) Stats {
	valid := registry.ValidIDs()
	cov := PassingCoverage(data)

	tested := requirements.NewIDSet()
	for id := range cov {
		if valid.Has(id) {
			tested.Add(id)
		}
	}
	untested := valid.Minus(tested)

	stats := Stats{
		TotalRequirements:  len(valid),
		TestedRequirements: len(tested),
		UntestedCount:      len(untested),
		CoveragePercentage: percentage(len(tested), len(valid)),
		Tested:             tested.Sorted(),
		Untested:           untested.Sorted(),
	}

	for _, pattern := range patterns {
		prefix := categoryPrefix(pattern)
		if prefix == "" {
			continue
		}

		var total, testedCount int
		for id := range valid {
			if strings.HasPrefix(id, prefix) {
				total++
				if tested.Has(id) {
					testedCount++
				}
			}
		}
		if total == 0 {
			continue
		}

		stats.Categories = append(stats.Categories, CategoryStats{
			Name:     categoryName(prefix),
			Prefix:   prefix,
			Tested:   testedCount,
			Total:    total,
			Coverage: percentage(testedCount, total),
		})
	}

	sort.Slice(stats.Categories, func(i, j int) bool {
		return stats.Categories[i].Prefix < stats.Categories[j].Prefix
	})

	return stats
}

// categoryPrefix derives the identifier prefix from a pattern, e.g.
// `FR-\d+\.?\d*` groups under "FR-".
func categoryPrefix(pattern string) string {
	i := strings.Index(pattern, "-")
	if i <= 0 {
		return ""
	}
	return strings.ToUpper(pattern[:i]) + "-"
}

func categoryName(prefix string) string {
	switch prefix {
	case "FR-":
		return "Functional Requirements (FR)"
	case "BR-":
		return "Business Rules (BR)"
	default:
		return strings.TrimSuffix(prefix, "-") + " Requirements"
	}
}

// RenderText writes the statistics as aligned terminal tables
func (s Stats) RenderText(w io.Writer, colors *ui.Colors) {
	fmt.Fprintln(w, colors.Bold(colors.Blue("\n📊 Requirements Coverage Statistics")))
	fmt.Fprintln(w)

	rows := [][2]string{
		{"Total Requirements", fmt.Sprintf("%d", s.TotalRequirements)},
		{"Tested Requirements", fmt.Sprintf("%d", s.TestedRequirements)},
		{"Untested Requirements", fmt.Sprintf("%d", s.UntestedCount)},
		{"Coverage Percentage", fmt.Sprintf("%.1f%%", s.CoveragePercentage)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n", colors.Cyan(pad(row[0], 24)), colors.Green(row[1]))
	}

	if len(s.Categories) == 0 {
		return
	}

	fmt.Fprintln(w, colors.Bold(colors.Blue("\n📋 Breakdown by Category")))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %8s %8s %10s\n",
		colors.Bold(pad("Category", 32)),
		colors.Bold("Tested"), colors.Bold("Total"), colors.Bold("Coverage"))
	for _, cat := range s.Categories {
		fmt.Fprintf(w, "  %s %8d %8d %9.1f%%\n",
			colors.Cyan(pad(cat.Name, 32)), cat.Tested, cat.Total, cat.Coverage)
	}
}

// RenderJSON writes the statistics as indented JSON
func (s Stats) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// RenderCSV writes one row per requirement with its status and category
func (s Stats) RenderCSV(w io.Writer) error {
	tested := requirements.NewIDSet(s.Tested...)

	all := append([]string{}, s.Tested...)
	all = append(all, s.Untested...)
	sort.Strings(all)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Requirement", "Status", "Category"}); err != nil {
		return err
	}
	for _, id := range all {
		status := "Not Tested"
		if tested.Has(id) {
			status = "Tested"
		}
		category := "Unknown"
		for _, cat := range s.Categories {
			if strings.HasPrefix(id, cat.Prefix) {
				category = strings.TrimSuffix(cat.Prefix, "-")
				break
			}
		}
		if err := cw.Write([]string{id, status, category}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// pad right-pads s with spaces to width. Padding happens before coloring so
// escape codes do not skew the column math.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
