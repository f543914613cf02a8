package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a service request. The set is closed;
// anything else is rejected at load time.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusInProgress Status = "in-progress"
	StatusPending    Status = "pending"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a raw status value against the closed set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusResolved, StatusInProgress, StatusPending, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// ActiveStatuses are the states counted as still open on the overview.
var ActiveStatuses = []Status{StatusInProgress, StatusPending}

// ServiceRequest is one logged roadside-assistance incident. The derived
// fields are computed once at load time and read-only thereafter.
type ServiceRequest struct {
	ID          string
	OpenedAt    time.Time
	RespondedAt time.Time
	Region      string
	IssueType   string
	Status      Status
	Latitude    float64
	Longitude   float64

	// Derived at load.
	ResponseTimeMinutes float64
	Date                string // opened_at calendar date, 2006-01-02
	Hour                int    // opened_at hour of day, 0-23
	DayOfWeek           string // opened_at weekday name, e.g. Monday
}

// Derive fills the computed fields from the timestamps. It is called by the
// loader and by the data generator; callers elsewhere treat the record as
// immutable.
func (r *ServiceRequest) Derive() {
	r.ResponseTimeMinutes = r.RespondedAt.Sub(r.OpenedAt).Minutes()
	r.Date = r.OpenedAt.Format("2006-01-02")
	r.Hour = r.OpenedAt.Hour()
	r.DayOfWeek = r.OpenedAt.Weekday().String()
}

// SchemaError reports a required field missing or malformed in the input.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema: field %q missing", e.Field)
}

// Table is an immutable in-memory collection of service requests for one
// analysis pass. Geography availability is decided once at construction and
// propagated as data rather than re-inspected per record.
type Table struct {
	rows   []ServiceRequest
	hasGeo bool
}

// NewTable builds a table over the given rows. The slice is copied so later
// mutation by the caller cannot leak into the table.
func NewTable(rows []ServiceRequest, hasGeography bool) *Table {
	cp := make([]ServiceRequest, len(rows))
	copy(cp, rows)
	return &Table{rows: cp, hasGeo: hasGeography}
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.rows) }

// HasGeography reports whether every record carries coordinates.
func (t *Table) HasGeography() bool { return t.hasGeo }

// Rows returns a copy of the record slice. The table itself is never handed
// out, so an analysis pass cannot interfere with another over the same store.
func (t *Table) Rows() []ServiceRequest {
	cp := make([]ServiceRequest, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Filter selects which records survive into a derived table. Zero-valued
// fields match everything.
type Filter struct {
	Regions    []string
	IssueTypes []string
	Statuses   []Status
	From       time.Time // inclusive, compared against the opened_at date
	To         time.Time // inclusive
}

// Filter derives a fresh table containing only matching records. The source
// table is left untouched.
func (t *Table) Filter(f Filter) *Table {
	out := make([]ServiceRequest, 0, len(t.rows))
	for _, r := range t.rows {
		if len(f.Regions) > 0 && !containsString(f.Regions, r.Region) {
			continue
		}
		if len(f.IssueTypes) > 0 && !containsString(f.IssueTypes, r.IssueType) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
			continue
		}
		if !f.From.IsZero() && r.OpenedAt.Before(startOfDay(f.From)) {
			continue
		}
		if !f.To.IsZero() && !r.OpenedAt.Before(startOfDay(f.To).Add(24*time.Hour)) {
			continue
		}
		out = append(out, r)
	}
	return &Table{rows: out, hasGeo: t.hasGeo}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsStatus(haystack []Status, needle Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
