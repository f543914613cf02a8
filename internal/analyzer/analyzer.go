package analyzer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shaharishay14/service-tracker/internal/model"
)

// ErrEmptyInput is returned when an analysis is requested over a table with
// no records. Callers decide whether to show an empty state or refuse.
var ErrEmptyInput = errors.New("no records to analyze")

// Options controls analyzer thresholds. The defaults match the established
// reporting behaviour; change them only deliberately.
type Options struct {
	// ProblematicRegionFactor flags a region when its mean response time
	// exceeds this multiple of the overall mean.
	ProblematicRegionFactor float64
	// ComplexIssueFactor flags an issue type the same way.
	ComplexIssueFactor float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ProblematicRegionFactor: 1.2,
		ComplexIssueFactor:      1.1,
	}
}

// Analyzer turns a service-request table into aggregate statistics and key
// insights. It performs no I/O and never mutates its input; each operation
// works on a private copy of the table's rows.
type Analyzer struct {
	opt       Options
	last      *Analysis
	lastTable *model.Table
}

// New constructs an analyzer. Zero or negative factors fall back to defaults.
func New(opt Options) *Analyzer {
	def := DefaultOptions()
	if opt.ProblematicRegionFactor <= 0 {
		opt.ProblematicRegionFactor = def.ProblematicRegionFactor
	}
	if opt.ComplexIssueFactor <= 0 {
		opt.ComplexIssueFactor = def.ComplexIssueFactor
	}
	return &Analyzer{opt: opt}
}

// ResponseTimes groups response times by region and by issue type and flags
// the slow groups against the overall mean.
func (a *Analyzer) ResponseTimes(t *model.Table) (ResponseTimeAnalysis, error) {
	rows := t.Rows()
	if len(rows) == 0 {
		return ResponseTimeAnalysis{}, ErrEmptyInput
	}

	byRegion := map[string][]float64{}
	byIssue := map[string][]float64{}
	total := 0.0
	for _, r := range rows {
		byRegion[r.Region] = append(byRegion[r.Region], r.ResponseTimeMinutes)
		byIssue[r.IssueType] = append(byIssue[r.IssueType], r.ResponseTimeMinutes)
		total += r.ResponseTimeMinutes
	}
	overall := total / float64(len(rows))

	out := ResponseTimeAnalysis{
		OverallAvg:         round2(overall),
		RegionStats:        map[string]DistStats{},
		IssueStats:         map[string]DistStats{},
		ProblematicRegions: map[string]DistStats{},
		ComplexIssues:      map[string]DistStats{},
	}
	for region, vals := range byRegion {
		s := summarize(vals)
		out.RegionStats[region] = s
		if s.Mean > overall*a.opt.ProblematicRegionFactor {
			out.ProblematicRegions[region] = s
		}
	}
	for issue, vals := range byIssue {
		s := summarize(vals)
		out.IssueStats[issue] = s
		if s.Mean > overall*a.opt.ComplexIssueFactor {
			out.ComplexIssues[issue] = s
		}
	}
	return out, nil
}

// VolumePatterns counts requests by hour of day, calendar date and weekday.
func (a *Analyzer) VolumePatterns(t *model.Table) (VolumeAnalysis, error) {
	rows := t.Rows()
	if len(rows) == 0 {
		return VolumeAnalysis{}, ErrEmptyInput
	}

	hourly := map[int]int{}
	daily := map[string]int{}
	weekday := map[string]int{}
	for _, r := range rows {
		hourly[r.Hour]++
		daily[r.Date]++
		weekday[r.DayOfWeek]++
	}

	dailyTotal := 0
	for _, c := range daily {
		dailyTotal += c
	}

	return VolumeAnalysis{
		TotalRequests:    len(rows),
		AvgDailyRequests: round1(float64(dailyTotal) / float64(len(daily))),
		PeakHours:        topHours(hourly, 3, true),
		QuietHours:       topHours(hourly, 3, false),
		BusiestDays:      topDays(weekday, 3),
		BusiestDates:     topDates(daily, 5),
	}, nil
}

// IssueDistribution computes frequency and share per issue type plus the
// region x issue contingency matrix. Ties on most/least common break by
// first-encountered order.
func (a *Analyzer) IssueDistribution(t *model.Table) (IssueAnalysis, error) {
	rows := t.Rows()
	if len(rows) == 0 {
		return IssueAnalysis{}, ErrEmptyInput
	}

	counts := map[string]int{}
	firstSeen := map[string]int{}
	matrix := map[string]map[string]int{}
	for i, r := range rows {
		if _, ok := counts[r.IssueType]; !ok {
			firstSeen[r.IssueType] = i
		}
		counts[r.IssueType]++
		if matrix[r.Region] == nil {
			matrix[r.Region] = map[string]int{}
		}
		matrix[r.Region][r.IssueType]++
	}

	percentages := make(map[string]float64, len(counts))
	for issue, c := range counts {
		percentages[issue] = round1(float64(c) * 100 / float64(len(rows)))
	}

	ranked := make([]string, 0, len(counts))
	for issue := range counts {
		ranked = append(ranked, issue)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	return IssueAnalysis{
		Counts:            counts,
		Percentages:       percentages,
		MostCommon:        ranked[0],
		LeastCommon:       ranked[len(ranked)-1],
		RegionIssueMatrix: matrix,
	}, nil
}

// StatusPerformance computes the status mix, the resolved rate and the mean
// response time per status.
func (a *Analyzer) StatusPerformance(t *model.Table) (StatusAnalysis, error) {
	rows := t.Rows()
	if len(rows) == 0 {
		return StatusAnalysis{}, ErrEmptyInput
	}

	counts := map[string]int{}
	sums := map[string]float64{}
	for _, r := range rows {
		s := string(r.Status)
		counts[s]++
		sums[s] += r.ResponseTimeMinutes
	}

	percentages := make(map[string]float64, len(counts))
	respTimes := make(map[string]float64, len(counts))
	for s, c := range counts {
		percentages[s] = round1(float64(c) * 100 / float64(len(rows)))
		respTimes[s] = round2(sums[s] / float64(c))
	}

	// The resolved rate is exactly the resolved percentage, or 0 when the
	// status never occurs.
	resolved := 0.0
	if p, ok := percentages[string(model.StatusResolved)]; ok {
		resolved = p
	}

	return StatusAnalysis{
		Counts:        counts,
		Percentages:   percentages,
		ResolvedRate:  resolved,
		ResponseTimes: respTimes,
	}, nil
}

// GeographicPatterns summarises per-region centroids and volume. A table
// without coordinates yields the explicit unavailable marker, never an error.
func (a *Analyzer) GeographicPatterns(t *model.Table) (GeographicAnalysis, error) {
	rows := t.Rows()
	if len(rows) == 0 {
		return GeographicAnalysis{}, ErrEmptyInput
	}
	if !t.HasGeography() {
		return GeographicAnalysis{Available: false}, nil
	}

	type acc struct {
		respSum, latSum, lonSum float64
		count                   int
	}
	byRegion := map[string]*acc{}
	for _, r := range rows {
		g := byRegion[r.Region]
		if g == nil {
			g = &acc{}
			byRegion[r.Region] = g
		}
		g.respSum += r.ResponseTimeMinutes
		g.latSum += r.Latitude
		g.lonSum += r.Longitude
		g.count++
	}

	regions := make(map[string]RegionGeo, len(byRegion))
	totalCount := 0
	for region, g := range byRegion {
		n := float64(g.count)
		regions[region] = RegionGeo{
			AvgResponseTime: round4(g.respSum / n),
			RequestCount:    g.count,
			CenterLat:       round4(g.latSum / n),
			CenterLon:       round4(g.lonSum / n),
		}
		totalCount += g.count
	}

	meanCount := float64(totalCount) / float64(len(byRegion))
	var high []string
	for region, g := range regions {
		if float64(g.RequestCount) > meanCount {
			high = append(high, region)
		}
	}
	sort.Strings(high)

	return GeographicAnalysis{Available: true, Regions: regions, HighVolumeRegions: high}, nil
}

// Comprehensive runs all five analyses plus metadata. The result is cached on
// the analyzer for KeyInsights; the input table is never modified.
func (a *Analyzer) Comprehensive(t *model.Table) (*Analysis, error) {
	responseTimes, err := a.ResponseTimes(t)
	if err != nil {
		return nil, err
	}
	volume, err := a.VolumePatterns(t)
	if err != nil {
		return nil, err
	}
	issues, err := a.IssueDistribution(t)
	if err != nil {
		return nil, err
	}
	status, err := a.StatusPerformance(t)
	if err != nil {
		return nil, err
	}
	geo, err := a.GeographicPatterns(t)
	if err != nil {
		return nil, err
	}

	minOpened, maxOpened := openedRange(t)
	result := &Analysis{
		Metadata: Metadata{
			AnalysisDate: time.Now().Format("2006-01-02 15:04:05"),
			TotalRecords: t.Len(),
			DateRange: DateRange{
				Start: minOpened.Format("2006-01-02"),
				End:   maxOpened.Format("2006-01-02"),
			},
		},
		ResponseTimes:     responseTimes,
		VolumePatterns:    volume,
		IssueDistribution: issues,
		StatusPerformance: status,
		Geographic:        geo,
	}
	a.last = result
	a.lastTable = t
	return result, nil
}

// KeyInsights derives the fixed-order headline sentences from the last
// comprehensive analysis, running one first if this table has not been
// analyzed yet. Five sentences, or four when no region is flagged
// problematic.
func (a *Analyzer) KeyInsights(t *model.Table) ([]string, error) {
	if a.last == nil || a.lastTable != t {
		if _, err := a.Comprehensive(t); err != nil {
			return nil, err
		}
	}
	res := a.last

	insights := make([]string, 0, 5)
	insights = append(insights, fmt.Sprintf("Overall average response time: %.2f minutes", res.ResponseTimes.OverallAvg))

	if len(res.ResponseTimes.ProblematicRegions) > 0 {
		worst, stats := worstRegion(res.ResponseTimes.ProblematicRegions)
		insights = append(insights, fmt.Sprintf("Slowest region: %s (%.2f minutes on average)", worst, stats.Mean))
	}

	if len(res.VolumePatterns.PeakHours) > 0 {
		peak := res.VolumePatterns.PeakHours[0]
		insights = append(insights, fmt.Sprintf("Peak hour: %02d:00 with %d requests", peak.Hour, peak.Count))
	}

	most := res.IssueDistribution.MostCommon
	insights = append(insights, fmt.Sprintf("Most common issue: %s (%.1f%% of requests)", most, res.IssueDistribution.Percentages[most]))

	insights = append(insights, fmt.Sprintf("Resolved rate: %.1f%% of requests", res.StatusPerformance.ResolvedRate))
	return insights, nil
}

func worstRegion(regions map[string]DistStats) (string, DistStats) {
	var name string
	var best DistStats
	for region, s := range regions {
		if name == "" || s.Mean > best.Mean || (s.Mean == best.Mean && region < name) {
			name = region
			best = s
		}
	}
	return name, best
}

func openedRange(t *model.Table) (time.Time, time.Time) {
	rows := t.Rows()
	min, max := rows[0].OpenedAt, rows[0].OpenedAt
	for _, r := range rows[1:] {
		if r.OpenedAt.Before(min) {
			min = r.OpenedAt
		}
		if r.OpenedAt.After(max) {
			max = r.OpenedAt
		}
	}
	return min, max
}

// summarize computes the distribution summary for one group, 2 dp.
// Std is the sample standard deviation; a single observation yields 0.
func summarize(vals []float64) DistStats {
	n := len(vals)
	min, max := vals[0], vals[0]
	sum := 0.0
	for _, v := range vals {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(n)

	variance := 0.0
	if n > 1 {
		for _, v := range vals {
			d := v - mean
			variance += d * d
		}
		variance /= float64(n - 1)
	}

	return DistStats{
		Mean:   round2(mean),
		Median: round2(median(vals)),
		Std:    round2(math.Sqrt(variance)),
		Min:    round2(min),
		Max:    round2(max),
		Count:  n,
	}
}

func median(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

// topHours ranks hourly counts. Ties break by hour ascending after the count.
func topHours(counts map[int]int, n int, largest bool) []HourCount {
	out := make([]HourCount, 0, len(counts))
	for h, c := range counts {
		out = append(out, HourCount{Hour: h, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			if largest {
				return out[i].Count > out[j].Count
			}
			return out[i].Count < out[j].Count
		}
		return out[i].Hour < out[j].Hour
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topDates(counts map[string]int, n int) []DateCount {
	out := make([]DateCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DateCount{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Date < out[j].Date
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

var weekdayOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

func topDays(counts map[string]int, n int) []DayCount {
	out := make([]DayCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DayCount{Day: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return weekdayOrder[out[i].Day] < weekdayOrder[out[j].Day]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
