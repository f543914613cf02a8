package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shaharishay14/service-tracker/internal/model"
)

// CSVWriter exports service requests to a CSV file.
type CSVWriter struct {
	file    *os.File
	writer  *csv.Writer
	withGeo bool
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, withGeo bool) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csv: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := []string{"id", "opened_at", "responded_at", "region", "issue_type", "status", "response_time_minutes"}
	if withGeo {
		header = append(header, "latitude", "longitude")
	}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w, withGeo: withGeo}, nil
}

// Write appends one row per service request.
func (c *CSVWriter) Write(rows []model.ServiceRequest) error {
	for _, r := range rows {
		row := []string{
			r.ID,
			r.OpenedAt.Format(time.RFC3339),
			r.RespondedAt.Format(time.RFC3339),
			r.Region,
			r.IssueType,
			string(r.Status),
			strconv.FormatFloat(r.ResponseTimeMinutes, 'f', 2, 64),
		}
		if c.withGeo {
			row = append(row,
				strconv.FormatFloat(r.Latitude, 'f', 6, 64),
				strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
