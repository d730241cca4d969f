package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ResolveDate maps a collaborator-supplied date string to a single calendar
// day, anchored at noon UTC so the day never shifts across timezones. Two
// tiers, first match wins:
//
//  1. strict YYYY-MM-DD, validated (2024-02-30 is rejected, not reinterpreted);
//  2. natural-language parse for forms like "January 1, 2025".
//
// Recurring or relative terms ("Net 30", "the 1st of every month") resolve to
// nothing on purpose; callers drop those items rather than guess.
func ResolveDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isoDatePattern.MatchString(s) {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, false
		}
		return noonUTC(d), true
	}

	d, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return noonUTC(d), true
}

func noonUTC(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}
