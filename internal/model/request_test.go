package model

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"resolved", "in-progress", "pending", "cancelled"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected", valid)
		}
	}
	for _, invalid := range []string{"", "done", "Resolved", "open"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted", invalid)
		}
	}
}

func TestDerive(t *testing.T) {
	opened := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC) // a Monday
	r := ServiceRequest{OpenedAt: opened, RespondedAt: opened.Add(90 * time.Minute)}
	r.Derive()

	if r.ResponseTimeMinutes != 90.0 {
		t.Errorf("response time = %v", r.ResponseTimeMinutes)
	}
	if r.Date != "2025-03-03" {
		t.Errorf("date = %q", r.Date)
	}
	if r.Hour != 14 {
		t.Errorf("hour = %d", r.Hour)
	}
	if r.DayOfWeek != "Monday" {
		t.Errorf("day = %q", r.DayOfWeek)
	}
}

func testRows() []ServiceRequest {
	mk := func(id, region, issue string, status Status, opened time.Time) ServiceRequest {
		r := ServiceRequest{
			ID: id, OpenedAt: opened, RespondedAt: opened.Add(30 * time.Minute),
			Region: region, IssueType: issue, Status: status,
		}
		r.Derive()
		return r
	}
	return []ServiceRequest{
		mk("1", "Tel Aviv", "flat tire", StatusResolved, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		mk("2", "Haifa", "dead battery", StatusPending, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)),
		mk("3", "Tel Aviv", "dead battery", StatusCancelled, time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC)),
	}
}

func TestTableImmutability(t *testing.T) {
	rows := testRows()
	tbl := NewTable(rows, false)

	// Mutating the source slice must not leak into the table.
	rows[0].Region = "Mutated"
	if tbl.Rows()[0].Region != "Tel Aviv" {
		t.Error("table shares backing storage with the caller's slice")
	}

	// Mutating a returned copy must not leak either.
	got := tbl.Rows()
	got[1].Region = "Mutated"
	if tbl.Rows()[1].Region != "Haifa" {
		t.Error("Rows() hands out the internal slice")
	}
}

func TestTableFilter(t *testing.T) {
	tbl := NewTable(testRows(), true)

	cases := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3"}},
		{"by region", Filter{Regions: []string{"Tel Aviv"}}, []string{"1", "3"}},
		{"by issue", Filter{IssueTypes: []string{"dead battery"}}, []string{"2", "3"}},
		{"by status", Filter{Statuses: []Status{StatusResolved, StatusPending}}, []string{"1", "2"}},
		{"from date inclusive", Filter{From: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)}, []string{"2", "3"}},
		{"to date inclusive", Filter{To: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)}, []string{"1", "2"}},
		{"window", Filter{
			From: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		}, []string{"2"}},
		{"combined", Filter{Regions: []string{"Tel Aviv"}, IssueTypes: []string{"dead battery"}}, []string{"3"}},
		{"no match", Filter{Regions: []string{"Eilat"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tbl.Filter(tc.filter)
			if got.Len() != len(tc.wantIDs) {
				t.Fatalf("len = %d, want %d", got.Len(), len(tc.wantIDs))
			}
			for i, r := range got.Rows() {
				if r.ID != tc.wantIDs[i] {
					t.Errorf("row %d id = %q, want %q", i, r.ID, tc.wantIDs[i])
				}
			}
			if !got.HasGeography() {
				t.Error("filter dropped the geography flag")
			}
		})
	}

	if tbl.Len() != 3 {
		t.Error("filter mutated the source table")
	}
}
