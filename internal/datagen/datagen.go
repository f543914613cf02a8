// Package datagen produces synthetic service-request datasets for demos and
// local development.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaharishay14/service-tracker/internal/loader"
	"github.com/shaharishay14/service-tracker/internal/utils"
)

// Region is a service area with its nominal centre coordinates.
type Region struct {
	Name string
	Lat  float64
	Lon  float64
}

// DefaultRegions are the built-in service areas.
var DefaultRegions = []Region{
	{Name: "Tel Aviv", Lat: 32.0853, Lon: 34.7818},
	{Name: "Haifa", Lat: 32.7940, Lon: 34.9896},
	{Name: "Jerusalem", Lat: 31.7683, Lon: 35.2137},
	{Name: "Beer Sheva", Lat: 31.2518, Lon: 34.7915},
	{Name: "Netanya", Lat: 32.3215, Lon: 34.8532},
	{Name: "Petah Tikva", Lat: 32.0870, Lon: 34.8873},
	{Name: "Ashdod", Lat: 31.8044, Lon: 34.6553},
	{Name: "Rishon LeZion", Lat: 31.9730, Lon: 34.8066},
}

// DefaultIssueTypes are the common roadside failure categories.
var DefaultIssueTypes = []string{
	"dead battery",
	"flat tire",
	"engine failure",
	"out of fuel",
	"keys locked in car",
	"electrical fault",
	"minor accident",
}

var statuses = []string{"resolved", "in-progress", "pending", "cancelled"}

// Options controls dataset generation.
type Options struct {
	Count      int
	Days       int  // trailing window length in days
	IncludeGeo bool // attach jittered coordinates
	Seed       int64
	Now        time.Time // zero means time.Now()
}

// DefaultOptions matches the shipped demo dataset.
func DefaultOptions() Options {
	return Options{Count: 100, Days: 30, IncludeGeo: true}
}

// Generate builds synthetic wire records. Open times are biased toward
// business hours (06:00-22:00) and responses land 10-180 minutes later.
func Generate(opt Options) []loader.Record {
	if opt.Count <= 0 {
		opt.Count = 100
	}
	if opt.Days <= 0 {
		opt.Days = 30
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	seed := opt.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	start := now.AddDate(0, 0, -opt.Days)

	recs := make([]loader.Record, 0, opt.Count)
	for i := 0; i < opt.Count; i++ {
		opened := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()).
			AddDate(0, 0, rng.Intn(opt.Days+1)).
			Add(time.Duration(6+rng.Intn(17)) * time.Hour).
			Add(time.Duration(rng.Intn(60)) * time.Minute)
		responded := opened.Add(time.Duration(10+rng.Intn(171)) * time.Minute)

		region := DefaultRegions[rng.Intn(len(DefaultRegions))]
		rec := loader.Record{
			ID:          fmt.Sprintf("REQ-%s", strings.ToUpper(uuid.NewString()[:8])),
			OpenedAt:    opened.Format("2006-01-02T15:04:05"),
			RespondedAt: responded.Format("2006-01-02T15:04:05"),
			Region:      region.Name,
			IssueType:   DefaultIssueTypes[rng.Intn(len(DefaultIssueTypes))],
			Status:      statuses[rng.Intn(len(statuses))],
		}
		if opt.IncludeGeo {
			// Jitter of up to ~5km so points do not stack on the centre.
			lat := round6(region.Lat + (rng.Float64()-0.5)*0.1)
			lon := round6(region.Lon + (rng.Float64()-0.5)*0.1)
			rec.Latitude = &lat
			rec.Longitude = &lon
		}
		recs = append(recs, rec)
	}
	return recs
}

// WriteJSON saves the generated records as a pretty-printed JSON array.
func WriteJSON(path string, recs []loader.Record) error {
	b, err := utils.PrettyJSON(recs)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, append(b, '\n')); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
