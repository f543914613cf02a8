// Package report renders an analysis plus its narrative into a flat text
// document suitable for download as a .txt file.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shaharishay14/service-tracker/internal/analyzer"
	"github.com/shaharishay14/service-tracker/internal/narrative"
)

// FormatError reports a malformed analysis handed to the formatter. This
// indicates a precondition violation upstream and is raised rather than
// papered over: a silently wrong report is worse than a visible failure.
type FormatError struct {
	Section string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: analysis section %q missing or empty", e.Section)
}

const ruleWidth = 80

// Render serialises the analysis and narrative into the downloadable report.
// Deterministic given identical inputs except for the embedded generation
// timestamp.
func Render(a *analyzer.Analysis, nr narrative.Result) (string, error) {
	if err := validate(a); err != nil {
		return "", err
	}

	rule := strings.Repeat("=", ruleWidth)
	var lines []string

	lines = append(lines,
		rule,
		"Service Performance Analysis Report - Service Tracker",
		rule,
		fmt.Sprintf("Generated: %s", time.Now().Format("02/01/2006 15:04:05")),
	)

	if nr.Source == narrative.SourceExternal {
		lines = append(lines, "Analysis type: advanced analysis (external model)")
		lines = append(lines, fmt.Sprintf("Model: %s", nr.ModelUsed))
		if nr.TokenCount > 0 {
			lines = append(lines, fmt.Sprintf("Tokens used: %d", nr.TokenCount))
		}
	} else {
		lines = append(lines, "Analysis type: basic analysis (offline)")
		if nr.Err != "" {
			lines = append(lines, fmt.Sprintf("Reason: %s", nr.Err))
		}
	}

	lines = append(lines, "", nr.Text, "")

	lines = append(lines,
		rule,
		"Appendix: detailed statistics",
		rule,
		"## Analysis Details",
		fmt.Sprintf("Analysis period: %s to %s", a.Metadata.DateRange.Start, a.Metadata.DateRange.End),
		fmt.Sprintf("Total records: %d", a.Metadata.TotalRecords),
		"",
		"## Response Times by Region",
	)
	for _, region := range sortedStatKeys(a.ResponseTimes.RegionStats) {
		s := a.ResponseTimes.RegionStats[region]
		lines = append(lines,
			fmt.Sprintf("%s:", region),
			fmt.Sprintf("  Mean: %.2f minutes", s.Mean),
			fmt.Sprintf("  Median: %.2f minutes", s.Median),
			fmt.Sprintf("  Requests: %d", s.Count),
		)
	}

	lines = append(lines, "", "## Issue Type Distribution")
	for _, issue := range rankedByCount(a.IssueDistribution.Counts) {
		lines = append(lines, fmt.Sprintf("%s: %d requests (%.1f%%)",
			issue, a.IssueDistribution.Counts[issue], a.IssueDistribution.Percentages[issue]))
	}

	lines = append(lines, "", "## Status Distribution")
	for _, status := range rankedByCount(a.StatusPerformance.Counts) {
		lines = append(lines, fmt.Sprintf("%s: %d requests (%.1f%%)",
			status, a.StatusPerformance.Counts[status], a.StatusPerformance.Percentages[status]))
	}

	if a.Geographic.Available {
		lines = append(lines, "", "## Geographic Summary")
		for _, region := range sortedGeoKeys(a.Geographic.Regions) {
			g := a.Geographic.Regions[region]
			lines = append(lines, fmt.Sprintf("%s: %d requests, centre (%.4f, %.4f)",
				region, g.RequestCount, g.CenterLat, g.CenterLon))
		}
	}

	lines = append(lines,
		"",
		rule,
		"This report was generated automatically by Service Tracker",
		fmt.Sprintf("(c) %d Service Tracker Analytics", time.Now().Year()),
		rule,
	)

	return strings.Join(lines, "\n"), nil
}

func validate(a *analyzer.Analysis) error {
	if a == nil {
		return &FormatError{Section: "analysis"}
	}
	if a.Metadata.AnalysisDate == "" || a.Metadata.TotalRecords <= 0 {
		return &FormatError{Section: "metadata"}
	}
	if len(a.ResponseTimes.RegionStats) == 0 {
		return &FormatError{Section: "response_times"}
	}
	if len(a.IssueDistribution.Counts) == 0 {
		return &FormatError{Section: "issue_distribution"}
	}
	if len(a.StatusPerformance.Counts) == 0 {
		return &FormatError{Section: "status_performance"}
	}
	return nil
}

// rankedByCount orders keys by count descending, name ascending, so report
// output is stable run to run.
func rankedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortedStatKeys(m map[string]analyzer.DistStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGeoKeys(m map[string]analyzer.RegionGeo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
