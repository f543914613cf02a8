package analyzer

// Analysis is the full result of one pass over a request table. Produced
// fresh on each call; callers treat it as read-only.
type Analysis struct {
	Metadata          Metadata             `json:"metadata"`
	ResponseTimes     ResponseTimeAnalysis `json:"response_times"`
	VolumePatterns    VolumeAnalysis       `json:"volume_patterns"`
	IssueDistribution IssueAnalysis        `json:"issue_distribution"`
	StatusPerformance StatusAnalysis       `json:"status_performance"`
	Geographic        GeographicAnalysis   `json:"geographic_patterns"`
}

// Metadata records when the analysis ran and over what.
type Metadata struct {
	AnalysisDate string    `json:"analysis_date"` // 2006-01-02 15:04:05
	TotalRecords int       `json:"total_records"`
	DateRange    DateRange `json:"date_range"`
}

// DateRange spans the earliest and latest opened_at calendar dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DistStats is a response-time distribution summary for one group,
// all values rounded to 2 decimal places.
type DistStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// ResponseTimeAnalysis breaks response times down by region and issue type.
type ResponseTimeAnalysis struct {
	OverallAvg float64 `json:"overall_avg"`
	// Per-dimension distributions.
	RegionStats map[string]DistStats `json:"region_stats"`
	IssueStats  map[string]DistStats `json:"issue_stats"`
	// Regions whose mean exceeds the problematic-region factor times the
	// overall mean, and issue types past the complex-issue factor.
	ProblematicRegions map[string]DistStats `json:"problematic_regions"`
	ComplexIssues      map[string]DistStats `json:"complex_issues"`
}

// HourCount pairs an hour of day (0-23) with its request count.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DateCount pairs a calendar date with its request count.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayCount pairs a weekday name with its request count.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// VolumeAnalysis captures when requests arrive.
type VolumeAnalysis struct {
	TotalRequests    int         `json:"total_requests"`
	AvgDailyRequests float64     `json:"avg_daily_requests"`
	PeakHours        []HourCount `json:"peak_hours"`  // 3 largest
	QuietHours       []HourCount `json:"quiet_hours"` // 3 smallest
	BusiestDays      []DayCount  `json:"busiest_days"`
	BusiestDates     []DateCount `json:"busiest_dates"`
}

// IssueAnalysis captures what goes wrong and where.
type IssueAnalysis struct {
	Counts      map[string]int     `json:"issue_counts"`
	Percentages map[string]float64 `json:"issue_percentages"`
	MostCommon  string             `json:"most_common_issue"`
	LeastCommon string             `json:"least_common_issue"`
	// region -> issue type -> count
	RegionIssueMatrix map[string]map[string]int `json:"region_issue_matrix"`
}

// StatusAnalysis captures resolution performance.
type StatusAnalysis struct {
	Counts        map[string]int     `json:"status_counts"`
	Percentages   map[string]float64 `json:"status_percentages"`
	ResolvedRate  float64            `json:"resolved_rate"`
	ResponseTimes map[string]float64 `json:"status_response_times"`
}

// RegionGeo summarises one region's requests on the map.
type RegionGeo struct {
	AvgResponseTime float64 `json:"avg_response_time"`
	RequestCount    int     `json:"request_count"`
	CenterLat       float64 `json:"center_lat"`
	CenterLon       float64 `json:"center_lon"`
}

// GeographicAnalysis is only populated when the table carries coordinates.
// Absent coordinates are an expected data condition, not an error.
type GeographicAnalysis struct {
	Available         bool                 `json:"available"`
	Regions           map[string]RegionGeo `json:"region_analysis,omitempty"`
	HighVolumeRegions []string             `json:"high_volume_regions,omitempty"`
}
