package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexplain/legal-demystifier/model"
)

// ErrNothingToExport reports that none of the candidate events carried a
// resolvable date. It is a neutral condition for the caller to surface, not
// a failure.
var ErrNothingToExport = errors.New("no exportable dates")

const icsProdID = "-//LegalDemystifier//Contract Reminders v1.0//EN"

// icsEscaper escapes free-text per RFC 5545: literal commas, semicolons and
// newlines must not terminate property values.
var icsEscaper = strings.NewReplacer(
	"\r\n", "\\n",
	"\n", "\\n",
	",", "\\,",
	";", "\\;",
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ReminderEvents maps a completed contract analysis to calendar export
// candidates: obligations first, then key dates, in extraction order.
// Payment terms are not exported; recurring due dates have no single day.
func ReminderEvents(analysis *model.ContractAnalysisResult) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0, len(analysis.Obligations)+len(analysis.KeyDates))
	for _, o := range analysis.Obligations {
		events = append(events, model.CalendarEvent{
			Summary:     fmt.Sprintf("DO: %s (for %s)", o.MustDo, o.Who),
			Description: fmt.Sprintf("Penalty: %s\nSource: \"%s\"", o.Penalty, o.SourceSpan),
			DateString:  o.ByWhen,
		})
	}
	for _, k := range analysis.KeyDates {
		events = append(events, model.CalendarEvent{
			Summary:     fmt.Sprintf("DEADLINE: %s", k.EventType),
			Description: fmt.Sprintf("Details: %s\nSource: \"%s\"", k.Details, k.SourceSpan),
			DateString:  k.Date,
		})
	}
	return events
}

// CreateICSContent produces the complete iCalendar document for the given
// candidates. Candidates whose date string cannot be resolved are dropped;
// if none survive, ErrNothingToExport is returned and no file content is
// produced. Each emitted VEVENT is an all-day event (DTEND = start + 1 day)
// with a unique UID and a shared creation timestamp.
func CreateICSContent(events []model.CalendarEvent) (string, error) {
	type resolved struct {
		event model.CalendarEvent
		start time.Time
	}

	var valid []resolved
	for _, e := range events {
		if start, ok := ResolveDate(e.DateString); ok {
			valid = append(valid, resolved{event: e, start: start})
		}
	}

	if len(valid) == 0 {
		return "", ErrNothingToExport
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProdID,
		"CALSCALE:GREGORIAN",
	}

	for _, r := range valid {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+newEventUID(),
			"DTSTAMP:"+stamp,
			"DTSTART;VALUE=DATE:"+r.start.Format("20060102"),
			"DTEND;VALUE=DATE:"+r.start.AddDate(0, 0, 1).Format("20060102"),
			"SUMMARY:"+icsEscaper.Replace(r.event.Summary),
			"DESCRIPTION:"+icsEscaper.Replace(r.event.Description),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")

	return strings.Join(lines, "\r\n"), nil
}

// CalendarFileName derives the download name for an export from the source
// document's filename, with non-alphanumeric characters replaced.
func CalendarFileName(fileName string) string {
	return nonAlphanumeric.ReplaceAllString(fileName, "_") + "_reminders.ics"
}

func newEventUID() string {
	return "uid-" + uuid.New().String() + "@legal-demystifier.app"
}
