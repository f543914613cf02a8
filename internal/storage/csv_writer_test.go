package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shaharishay14/service-tracker/internal/model"
)

func sampleRows() []model.ServiceRequest {
	opened := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := []model.ServiceRequest{
		{
			ID: "REQ-001", OpenedAt: opened, RespondedAt: opened.Add(45 * time.Minute),
			Region: "Tel Aviv", IssueType: "flat tire", Status: model.StatusResolved,
			Latitude: 32.0853, Longitude: 34.7818,
		},
		{
			ID: "REQ-002", OpenedAt: opened.Add(2 * time.Hour), RespondedAt: opened.Add(3 * time.Hour),
			Region: "Haifa", IssueType: "dead battery", Status: model.StatusPending,
			Latitude: 32.7940, Longitude: 34.9896,
		},
	}
	for i := range rows {
		rows[i].Derive()
	}
	return rows
}

func TestCSVWriterWithGeo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")

	w, err := NewCSVWriter(path, true)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}
	header := records[0]
	if len(header) != 9 || header[0] != "id" || header[7] != "latitude" || header[8] != "longitude" {
		t.Errorf("header = %v", header)
	}
	first := records[1]
	if first[0] != "REQ-001" || first[1] != "2025-03-01T09:00:00Z" {
		t.Errorf("row = %v", first)
	}
	if first[6] != "45.00" {
		t.Errorf("response time = %q, want 45.00", first[6])
	}
	if first[7] != "32.085300" {
		t.Errorf("latitude = %q", first[7])
	}
}

func TestCSVWriterWithoutGeo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")

	w, err := NewCSVWriter(path, false)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records[0]) != 7 {
		t.Errorf("header = %v, want 7 columns", records[0])
	}
}

func TestCSVWriterCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "export.csv")
	w, err := NewCSVWriter(path, false)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file: %v", err)
	}
}

func TestCSVWriterSatisfiesRequestWriter(t *testing.T) {
	var _ RequestWriter = (*CSVWriter)(nil)
	var _ RequestWriter = (*PostgresWriter)(nil)
}
