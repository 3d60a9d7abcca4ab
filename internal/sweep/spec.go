package sweep

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScanSpec is the parsed form of the scheduler.scan config value.
//
// Supported forms:
//   - Go duration: "10s", "2m30s" (fixed interval between scans)
//   - Cron: "*/30 * * * * *", "@every 10s" (5 or 6 fields, seconds optional)
//
// An optional "cron:" prefix forces cron parsing.
type ScanSpec struct {
	Every    time.Duration
	Schedule cron.Schedule
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseScanSpec parses a scan schedule string. Empty input falls back to a
// 10 second interval.
func ParseScanSpec(raw string) (ScanSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ScanSpec{Every: 10 * time.Second}, nil
	}

	if strings.HasPrefix(strings.ToLower(s), "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		sched, err := cronParser.Parse(expr)
		if err != nil {
			return ScanSpec{}, fmt.Errorf("invalid cron scan spec %q: %w", expr, err)
		}
		return ScanSpec{Schedule: sched}, nil
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		sched, err := cronParser.Parse(s)
		if err != nil {
			return ScanSpec{}, fmt.Errorf("invalid cron scan spec %q: %w", s, err)
		}
		return ScanSpec{Schedule: sched}, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return ScanSpec{}, fmt.Errorf("invalid scan spec %q (use a duration like '10s' or a cron expression)", s)
	}
	if d <= 0 {
		return ScanSpec{}, fmt.Errorf("scan interval must be > 0, got %q", s)
	}
	return ScanSpec{Every: d}, nil
}

// next returns when the scan after `from` should run.
func (sp ScanSpec) next(from time.Time) time.Time {
	if sp.Schedule != nil {
		return sp.Schedule.Next(from)
	}
	return from.Add(sp.Every)
}
