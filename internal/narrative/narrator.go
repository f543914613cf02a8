package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shaharishay14/service-tracker/internal/analyzer"
	"github.com/shaharishay14/service-tracker/internal/model"
)

// Source labels where a narrative came from.
type Source string

const (
	SourceExternal Source = "external"
	SourceFallback Source = "fallback"
)

// Result is the typed outcome of narrative generation. Credential and
// transport failures are folded into a fallback result rather than surfaced
// as errors; Err carries the reason for the record.
type Result struct {
	Text       string `json:"text"`
	Source     Source `json:"source"`
	ModelUsed  string `json:"model_used,omitempty"`
	TokenCount int    `json:"token_count,omitempty"`
	Err        string `json:"error,omitempty"`
}

// Generator is the minimal client behaviour the narrator needs.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Narrator turns an analysis into a free-text report, preferring the external
// model and falling back to the offline template.
type Narrator struct {
	client      Generator
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// NewNarrator wires a narrator over a generate client. An empty model falls
// back to a sensible default.
func NewNarrator(client Generator, apiKey, model string, maxTokens int, temperature float64) *Narrator {
	if model == "" {
		model = "openai/gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	if temperature <= 0 {
		temperature = 0.3
	}
	return &Narrator{
		client:      client,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate produces the narrative for an analysis. It never returns an error
// for credential or transport failures: those yield the fallback variant so
// the overall reporting flow is never aborted.
func (n *Narrator) Generate(ctx context.Context, a *analyzer.Analysis) Result {
	key := strings.TrimSpace(n.apiKey)
	if len(key) < 10 {
		reason := "missing API key"
		if key != "" {
			reason = "invalid API key"
		}
		return Result{Text: FallbackReport(a), Source: SourceFallback, Err: reason}
	}
	if n.client == nil {
		return Result{Text: FallbackReport(a), Source: SourceFallback, Err: "no client configured"}
	}

	req := GenerateRequest{
		Model: n.model,
		Messages: []Message{
			{Role: "system", Content: "You are a professional data analyst specialising in service performance for roadside-assistance operations."},
			{Role: "user", Content: buildPrompt(a, n.model)},
		},
		MaxTokens:   n.maxTokens,
		Temperature: n.temperature,
	}
	resp, err := n.client.Generate(ctx, req)
	if err != nil {
		return Result{Text: FallbackReport(a), Source: SourceFallback, Err: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return Result{Text: FallbackReport(a), Source: SourceFallback, Err: "no content returned from model"}
	}
	return Result{
		Text:       resp.Choices[0].Message.Content,
		Source:     SourceExternal,
		ModelUsed:  n.model,
		TokenCount: resp.Usage.TotalTokens,
	}
}

func buildPrompt(a *analyzer.Analysis, model string) string {
	var b strings.Builder
	b.WriteString("Service request data under analysis:\n")
	b.WriteString(Digest(a))
	b.WriteString("\n\nWrite a professional, detailed report containing:\n")
	b.WriteString("1. Executive summary - 2-3 sentences with the main findings\n")
	b.WriteString("2. Key findings: response-time performance, volume patterns, issue-type analysis, resolution performance, geographic patterns\n")
	b.WriteString("3. Identified problems: problematic regions or hours, complex issues, inefficiencies\n")
	b.WriteString("4. Improvement opportunities: concrete recommendations, resource optimisation, process improvements\n")
	b.WriteString("5. Action items: immediate steps, long-term planning, success metrics\n")
	b.WriteString("\nThe report should be clear and practical for managers, in a formal business style.\n")
	b.WriteString(fmt.Sprintf("Begin the report with the heading: \"Advanced Analysis - %s\"\n", model))
	return b.String()
}

// Digest renders the analysis as a compact plain-text summary suitable for a
// prompt or a quick terminal overview.
func Digest(a *analyzer.Analysis) string {
	var lines []string

	lines = append(lines,
		fmt.Sprintf("Analysis period: %s to %s", a.Metadata.DateRange.Start, a.Metadata.DateRange.End),
		fmt.Sprintf("Total requests: %d", a.Metadata.TotalRecords),
		fmt.Sprintf("Average response time: %.2f minutes", a.ResponseTimes.OverallAvg),
	)

	if len(a.ResponseTimes.ProblematicRegions) > 0 {
		lines = append(lines, "Problematic regions:")
		for _, region := range sortedKeys(a.ResponseTimes.ProblematicRegions) {
			lines = append(lines, fmt.Sprintf("  - %s: %.2f minutes on average", region, a.ResponseTimes.ProblematicRegions[region].Mean))
		}
	}

	lines = append(lines, fmt.Sprintf("Average daily requests: %.1f", a.VolumePatterns.AvgDailyRequests))
	if len(a.VolumePatterns.PeakHours) > 0 {
		hours := make([]string, len(a.VolumePatterns.PeakHours))
		for i, h := range a.VolumePatterns.PeakHours {
			hours[i] = fmt.Sprintf("%02d:00", h.Hour)
		}
		lines = append(lines, fmt.Sprintf("Peak hours: %s", strings.Join(hours, ", ")))
	}

	most := a.IssueDistribution.MostCommon
	lines = append(lines, fmt.Sprintf("Most common issue: %s (%.1f%%)", most, a.IssueDistribution.Percentages[most]))
	lines = append(lines, fmt.Sprintf("Resolved rate: %.1f%%", a.StatusPerformance.ResolvedRate))
	lines = append(lines, fmt.Sprintf("Open requests: %d", openRequests(a)))

	return strings.Join(lines, "\n")
}

// openRequests counts requests still in an active state.
func openRequests(a *analyzer.Analysis) int {
	open := 0
	for _, s := range model.ActiveStatuses {
		open += a.StatusPerformance.Counts[string(s)]
	}
	return open
}

// FallbackReport builds the deterministic offline narrative used when the
// external model is unavailable. Pure and non-blocking.
func FallbackReport(a *analyzer.Analysis) string {
	var lines []string

	lines = append(lines,
		"# Service Performance Report - Basic Analysis",
		fmt.Sprintf("Generated: %s", time.Now().Format("02/01/2006 15:04")),
		"",
		"Note: this is a basic analysis generated without the external language model.",
		"Provide an API key for a deeper narrative analysis.",
		"",
		"## Executive Summary",
		fmt.Sprintf("Analyzed %d service requests from %s to %s.",
			a.Metadata.TotalRecords, a.Metadata.DateRange.Start, a.Metadata.DateRange.End),
		fmt.Sprintf("The average response time is %.2f minutes and the resolved rate is %.1f%%.",
			a.ResponseTimes.OverallAvg, a.StatusPerformance.ResolvedRate),
		"",
		"## Key Findings",
		"",
		"### Response Times",
		fmt.Sprintf("- Overall average response time: %.2f minutes", a.ResponseTimes.OverallAvg),
	)

	problematic := sortedKeys(a.ResponseTimes.ProblematicRegions)
	if len(problematic) > 0 {
		lines = append(lines, "- Regions with elevated response times:")
		for _, region := range problematic {
			lines = append(lines, fmt.Sprintf("  * %s: %.2f minutes", region, a.ResponseTimes.ProblematicRegions[region].Mean))
		}
	}

	lines = append(lines,
		"",
		"### Volume Patterns",
		fmt.Sprintf("- Average daily requests: %.1f", a.VolumePatterns.AvgDailyRequests),
	)
	if len(a.VolumePatterns.PeakHours) > 0 {
		lines = append(lines, "- Peak hours:")
		for _, h := range a.VolumePatterns.PeakHours {
			lines = append(lines, fmt.Sprintf("  * %02d:00 - %d requests", h.Hour, h.Count))
		}
	}

	most := a.IssueDistribution.MostCommon
	lines = append(lines,
		"",
		"### Issue Distribution",
		fmt.Sprintf("- Most common issue: %s (%.1f%%)", most, a.IssueDistribution.Percentages[most]),
		"- Full distribution:",
	)
	for _, issue := range rankedIssues(a.IssueDistribution) {
		lines = append(lines, fmt.Sprintf("  * %s: %.1f%%", issue, a.IssueDistribution.Percentages[issue]))
	}

	lines = append(lines, "", "## Recommendations")
	item := 1
	if len(problematic) > 0 {
		lines = append(lines, fmt.Sprintf("%d. Improve response times in problematic regions:", item))
		for _, region := range problematic {
			lines = append(lines, fmt.Sprintf("   - Increase staffing in %s", region))
		}
		item++
	}
	if a.StatusPerformance.ResolvedRate < 90 {
		lines = append(lines,
			fmt.Sprintf("%d. Improve the resolved rate:", item),
			"   - Review request-handling processes",
			"   - Train service teams",
		)
		item++
	}
	if len(a.VolumePatterns.PeakHours) > 0 {
		peak := a.VolumePatterns.PeakHours[0]
		lines = append(lines,
			fmt.Sprintf("%d. Optimise for peak hours:", item),
			fmt.Sprintf("   - Prepare additional capacity ahead of %02d:00", peak.Hour),
			"   - Reinforce staffing during busy hours",
		)
	}

	return strings.Join(lines, "\n")
}

// rankedIssues orders issue types by count descending, name ascending.
func rankedIssues(d analyzer.IssueAnalysis) []string {
	issues := make([]string, 0, len(d.Counts))
	for issue := range d.Counts {
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		if d.Counts[issues[i]] != d.Counts[issues[j]] {
			return d.Counts[issues[i]] > d.Counts[issues[j]]
		}
		return issues[i] < issues[j]
	})
	return issues
}

func sortedKeys(m map[string]analyzer.DistStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
