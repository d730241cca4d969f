package service

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/lexplain/legal-demystifier/model"
)

func TestReminderEvents(t *testing.T) {
	analysis := &model.ContractAnalysisResult{
		Obligations: []model.Obligation{
			{Who: "Tenant", MustDo: "Pay deposit", ByWhen: "2025-06-15", Penalty: "Late fee", SourceSpan: "deposit due"},
		},
		KeyDates: []model.KeyDate{
			{EventType: model.KeyDateExpiry, Date: "2026-01-01", Details: "Lease ends", SourceSpan: "term of one year"},
		},
		PaymentTerms: []model.PaymentTerm{
			{Amount: "$1200", DueDate: "the 1st of every month", Frequency: "monthly", Recipient: "Landlord"},
		},
	}

	events := ReminderEvents(analysis)

	// Payment terms are never exported
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Summary != "DO: Pay deposit (for Tenant)" {
		t.Errorf("Unexpected obligation summary: %s", events[0].Summary)
	}
	if !strings.Contains(events[0].Description, "Penalty: Late fee") {
		t.Errorf("Expected penalty in description, got %s", events[0].Description)
	}
	if !strings.Contains(events[0].Description, `Source: "deposit due"`) {
		t.Errorf("Expected quoted source span, got %s", events[0].Description)
	}
	if events[1].Summary != "DEADLINE: Contract Expiry" {
		t.Errorf("Unexpected key date summary: %s", events[1].Summary)
	}
}

func TestCreateICSContentRoundTrip(t *testing.T) {
	// One resolvable obligation, one unparseable key date: exactly one VEVENT
	events := []model.CalendarEvent{
		{Summary: "DO: Pay deposit (for Tenant)", Description: "Penalty: none", DateString: "2025-06-15"},
		{Summary: "DEADLINE: Other", Description: "Details: renewal", DateString: "upon renewal"},
	}

	content, err := CreateICSContent(events)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := strings.Count(content, "BEGIN:VEVENT"); got != 1 {
		t.Errorf("Expected exactly 1 VEVENT, got %d", got)
	}
	if !strings.Contains(content, "DTSTART;VALUE=DATE:20250615") {
		t.Error("Expected DTSTART 20250615")
	}
	if !strings.Contains(content, "DTEND;VALUE=DATE:20250616") {
		t.Error("Expected DTEND 20250616 (all-day convention, start+1)")
	}
	if !strings.HasPrefix(content, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//LegalDemystifier//Contract Reminders v1.0//EN\r\nCALSCALE:GREGORIAN\r\n") {
		t.Error("Unexpected calendar header")
	}
	if !strings.HasSuffix(content, "END:VCALENDAR") {
		t.Error("Expected END:VCALENDAR terminator")
	}
}

func TestCreateICSContentCRLF(t *testing.T) {
	events := []model.CalendarEvent{
		{Summary: "DO: a (for b)", Description: "d", DateString: "2025-06-15"},
	}

	content, err := CreateICSContent(events)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, line := range strings.Split(content, "\r\n") {
		if strings.Contains(line, "\n") {
			t.Errorf("Found bare newline in line %q", line)
		}
	}
}

func TestCreateICSContentUIDAndStamp(t *testing.T) {
	events := []model.CalendarEvent{
		{Summary: "a", Description: "b", DateString: "2025-06-15"},
		{Summary: "c", Description: "d", DateString: "2025-07-01"},
	}

	content, err := CreateICSContent(events)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	uidRe := regexp.MustCompile(`UID:(uid-[0-9a-f-]+@legal-demystifier\.app)`)
	uids := uidRe.FindAllStringSubmatch(content, -1)
	if len(uids) != 2 {
		t.Fatalf("Expected 2 UIDs, got %d", len(uids))
	}
	if uids[0][1] == uids[1][1] {
		t.Error("Expected globally-unique UID per event")
	}

	stampRe := regexp.MustCompile(`DTSTAMP:(\d{8}T\d{6}Z)`)
	stamps := stampRe.FindAllStringSubmatch(content, -1)
	if len(stamps) != 2 {
		t.Fatalf("Expected 2 DTSTAMP lines, got %d", len(stamps))
	}
	if stamps[0][1] != stamps[1][1] {
		t.Error("Expected a shared creation timestamp across events")
	}
}

func TestCreateICSContentPreservesInputOrder(t *testing.T) {
	events := []model.CalendarEvent{
		{Summary: "first", Description: "", DateString: "2025-12-01"},
		{Summary: "skipped", Description: "", DateString: "someday"},
		{Summary: "second", Description: "", DateString: "2025-01-05"},
	}

	content, err := CreateICSContent(events)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Index(content, "SUMMARY:first") > strings.Index(content, "SUMMARY:second") {
		t.Error("Expected events in input order regardless of date")
	}
	if strings.Contains(content, "skipped") {
		t.Error("Expected unresolvable candidate to be dropped")
	}
}

func TestCreateICSContentNothingToExport(t *testing.T) {
	events := []model.CalendarEvent{
		{Summary: "a", Description: "b", DateString: "Net 30"},
		{Summary: "c", Description: "d", DateString: "upon renewal"},
	}

	content, err := CreateICSContent(events)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Expected ErrNothingToExport, got %v", err)
	}
	if content != "" {
		t.Error("Expected no file content for the neutral condition")
	}
}

func TestCreateICSContentEscaping(t *testing.T) {
	events := []model.CalendarEvent{
		{
			Summary:     "DO: pay rent, on time; always",
			Description: "Penalty: $50\nSource: \"late, fees; apply\"",
			DateString:  "2025-06-15",
		},
	}

	content, err := CreateICSContent(events)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(content, `SUMMARY:DO: pay rent\, on time\; always`) {
		t.Error("Expected commas and semicolons escaped in summary")
	}
	if !strings.Contains(content, `Penalty: $50\nSource: "late\, fees\; apply"`) {
		t.Errorf("Expected escaped description, got %s", content)
	}
	// No raw newline may survive inside a description
	for _, line := range strings.Split(content, "\r\n") {
		if strings.HasPrefix(line, "DESCRIPTION:") && strings.ContainsAny(line, "\n") {
			t.Error("Raw newline in description")
		}
	}
}

func TestCalendarFileName(t *testing.T) {
	got := CalendarFileName("My Lease (2025).txt")
	want := "My_Lease__2025__txt_reminders.ics"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
