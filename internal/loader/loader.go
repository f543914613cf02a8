package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shaharishay14/service-tracker/internal/model"
)

// Record is the wire representation of one service request as stored in the
// JSON data file. Coordinates are optional but must be present for either all
// records or none.
type Record struct {
	ID          string   `json:"id"`
	OpenedAt    string   `json:"opened_at"`
	RespondedAt string   `json:"responded_at"`
	Region      string   `json:"region"`
	IssueType   string   `json:"issue_type"`
	Status      string   `json:"status"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Load reads a record table from a JSON or CSV file, chosen by extension.
func Load(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return LoadCSV(f)
	}
	return LoadJSON(f)
}

// LoadJSON parses a JSON array of request objects into an immutable table.
func LoadJSON(r io.Reader) (*model.Table, error) {
	var recs []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return Build(recs)
}

// LoadCSV parses a header-driven CSV export of the same fields.
func LoadCSV(r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Build(nil)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "opened_at", "responded_at", "region", "issue_type", "status"} {
		if _, ok := idx[required]; !ok {
			return nil, &model.SchemaError{Field: required, Reason: "missing from csv header"}
		}
	}

	var recs []Record
	for {
		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv row %d: %w", len(recs)+2, err)
		}
		field := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		rec := Record{
			ID:          field("id"),
			OpenedAt:    field("opened_at"),
			RespondedAt: field("responded_at"),
			Region:      field("region"),
			IssueType:   field("issue_type"),
			Status:      field("status"),
		}
		if lat := field("latitude"); lat != "" {
			v, err := strconv.ParseFloat(lat, 64)
			if err != nil {
				return nil, &model.SchemaError{Field: "latitude", Reason: fmt.Sprintf("not numeric: %q", lat)}
			}
			rec.Latitude = &v
		}
		if lon := field("longitude"); lon != "" {
			v, err := strconv.ParseFloat(lon, 64)
			if err != nil {
				return nil, &model.SchemaError{Field: "longitude", Reason: fmt.Sprintf("not numeric: %q", lon)}
			}
			rec.Longitude = &v
		}
		recs = append(recs, rec)
	}
	return Build(recs)
}

// Build validates wire records, derives the computed per-record fields and
// returns the immutable table. Geography is a table-level capability: partial
// coordinate presence is a schema violation.
func Build(recs []Record) (*model.Table, error) {
	rows := make([]model.ServiceRequest, 0, len(recs))
	withGeo := 0
	for i, rec := range recs {
		row, err := buildRow(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.ID, err)
		}
		if rec.Latitude != nil && rec.Longitude != nil {
			withGeo++
		}
		rows = append(rows, row)
	}
	if withGeo != 0 && withGeo != len(rows) {
		return nil, &model.SchemaError{
			Field:  "latitude/longitude",
			Reason: fmt.Sprintf("present on %d of %d records; coordinates must cover the whole table or none of it", withGeo, len(rows)),
		}
	}
	return model.NewTable(rows, len(rows) > 0 && withGeo == len(rows)), nil
}

func buildRow(rec Record) (model.ServiceRequest, error) {
	var row model.ServiceRequest
	if rec.ID == "" {
		return row, &model.SchemaError{Field: "id"}
	}
	if rec.Region == "" {
		return row, &model.SchemaError{Field: "region"}
	}
	if rec.IssueType == "" {
		return row, &model.SchemaError{Field: "issue_type"}
	}
	status, ok := model.ParseStatus(rec.Status)
	if !ok {
		if rec.Status == "" {
			return row, &model.SchemaError{Field: "status"}
		}
		return row, &model.SchemaError{Field: "status", Reason: fmt.Sprintf("unknown value %q", rec.Status)}
	}
	opened, err := parseTimestamp(rec.OpenedAt)
	if err != nil {
		return row, &model.SchemaError{Field: "opened_at", Reason: err.Error()}
	}
	responded, err := parseTimestamp(rec.RespondedAt)
	if err != nil {
		return row, &model.SchemaError{Field: "responded_at", Reason: err.Error()}
	}
	if responded.Before(opened) {
		return row, &model.SchemaError{Field: "responded_at", Reason: "earlier than opened_at"}
	}
	if (rec.Latitude == nil) != (rec.Longitude == nil) {
		return row, &model.SchemaError{Field: "latitude/longitude", Reason: "must be set together"}
	}

	row = model.ServiceRequest{
		ID:          rec.ID,
		OpenedAt:    opened,
		RespondedAt: responded,
		Region:      rec.Region,
		IssueType:   rec.IssueType,
		Status:      status,
	}
	if rec.Latitude != nil {
		row.Latitude = *rec.Latitude
		row.Longitude = *rec.Longitude
	}
	row.Derive()
	return row, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not ISO-8601: %q", s)
}
