package datagen

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shaharishay14/service-tracker/internal/loader"
)

func TestGenerateShape(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	recs := Generate(Options{Count: 50, Days: 10, IncludeGeo: true, Seed: 1, Now: now})

	if len(recs) != 50 {
		t.Fatalf("generated %d records, want 50", len(recs))
	}

	seen := map[string]bool{}
	for _, r := range recs {
		if !strings.HasPrefix(r.ID, "REQ-") {
			t.Errorf("id %q missing REQ- prefix", r.ID)
		}
		if seen[r.ID] {
			t.Errorf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true

		opened, err := time.Parse("2006-01-02T15:04:05", r.OpenedAt)
		if err != nil {
			t.Fatalf("opened_at %q: %v", r.OpenedAt, err)
		}
		responded, err := time.Parse("2006-01-02T15:04:05", r.RespondedAt)
		if err != nil {
			t.Fatalf("responded_at %q: %v", r.RespondedAt, err)
		}
		if responded.Before(opened) {
			t.Errorf("responded %v before opened %v", responded, opened)
		}
		gap := responded.Sub(opened)
		if gap < 10*time.Minute || gap > 180*time.Minute {
			t.Errorf("response gap %v outside 10-180 minutes", gap)
		}
		if opened.Hour() < 6 || opened.Hour() > 22 {
			t.Errorf("opened hour %d outside business window", opened.Hour())
		}
		if opened.Before(now.AddDate(0, 0, -11)) || opened.After(now.AddDate(0, 0, 1)) {
			t.Errorf("opened %v outside the trailing window", opened)
		}
		if r.Latitude == nil || r.Longitude == nil {
			t.Fatal("missing coordinates with IncludeGeo")
		}
	}
}

func TestGenerateCoordinatesNearRegionCentres(t *testing.T) {
	recs := Generate(Options{Count: 200, Days: 30, IncludeGeo: true, Seed: 7})
	centres := map[string]Region{}
	for _, reg := range DefaultRegions {
		centres[reg.Name] = reg
	}
	for _, r := range recs {
		c, ok := centres[r.Region]
		if !ok {
			t.Fatalf("unknown region %q", r.Region)
		}
		if math.Abs(*r.Latitude-c.Lat) > 0.06 || math.Abs(*r.Longitude-c.Lon) > 0.06 {
			t.Errorf("%s coordinates (%v, %v) too far from centre (%v, %v)",
				r.Region, *r.Latitude, *r.Longitude, c.Lat, c.Lon)
		}
	}
}

func TestGenerateWithoutGeo(t *testing.T) {
	recs := Generate(Options{Count: 10, Days: 5, IncludeGeo: false, Seed: 3})
	for _, r := range recs {
		if r.Latitude != nil || r.Longitude != nil {
			t.Fatal("coordinates present despite IncludeGeo=false")
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	a := Generate(Options{Count: 20, Days: 10, IncludeGeo: true, Seed: 42, Now: now})
	b := Generate(Options{Count: 20, Days: 10, IncludeGeo: true, Seed: 42, Now: now})
	for i := range a {
		if a[i].OpenedAt != b[i].OpenedAt || a[i].Region != b[i].Region || a[i].IssueType != b[i].IssueType {
			t.Fatalf("record %d diverged between identical seeds", i)
		}
	}
}

func TestGeneratedDataLoadsCleanly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")

	recs := Generate(Options{Count: 25, Days: 7, IncludeGeo: true, Seed: 11})
	if err := WriteJSON(path, recs); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file: %v", err)
	}

	tbl, err := loader.Load(path)
	if err != nil {
		t.Fatalf("generated dataset failed validation: %v", err)
	}
	if tbl.Len() != 25 || !tbl.HasGeography() {
		t.Fatalf("len=%d hasGeo=%v", tbl.Len(), tbl.HasGeography())
	}
}
