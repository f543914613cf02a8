package cmd

import (
	"fmt"
	"time"

	"github.com/shaharishay14/service-tracker/internal/model"
)

// filterFlags are the table filters shared by analyze, report and export.
type filterFlags struct {
	regions  []string
	issues   []string
	statuses []string
	from     string
	to       string
}

// build converts raw flag values into a model.Filter, validating statuses and
// date formats.
func (f *filterFlags) build() (model.Filter, error) {
	out := model.Filter{
		Regions:    f.regions,
		IssueTypes: f.issues,
	}
	for _, s := range f.statuses {
		status, ok := model.ParseStatus(s)
		if !ok {
			return model.Filter{}, fmt.Errorf("unknown --status: %s (use resolved|in-progress|pending|cancelled)", s)
		}
		out.Statuses = append(out.Statuses, status)
	}
	var err error
	if out.From, err = parseDateFlag(f.from); err != nil {
		return model.Filter{}, fmt.Errorf("invalid --from: %w", err)
	}
	if out.To, err = parseDateFlag(f.to); err != nil {
		return model.Filter{}, fmt.Errorf("invalid --to: %w", err)
	}
	return out, nil
}

func (f *filterFlags) empty() bool {
	return len(f.regions) == 0 && len(f.issues) == 0 && len(f.statuses) == 0 && f.from == "" && f.to == ""
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
