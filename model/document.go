package model

import (
	"time"
)

// AnalysisStatus tracks the plain-language analysis lifecycle of a document.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisAnalyzing AnalysisStatus = "analyzing"
	AnalysisComplete  AnalysisStatus = "complete"
	AnalysisError     AnalysisStatus = "error"
)

// ContractStatus tracks the contract/obligation analysis lifecycle. It is
// independent of AnalysisStatus: a document can be complete for one and
// none or error for the other at the same time.
type ContractStatus string

const (
	ContractNone     ContractStatus = "none"
	ContractPending  ContractStatus = "pending"
	ContractComplete ContractStatus = "complete"
	ContractError    ContractStatus = "error"
)

// Document is an uploaded legal document and its analysis state.
// FileName and OriginalContent are immutable after creation; status and
// result fields are only written through the store's update operations.
type Document struct {
	ID               string                  `json:"id"`
	FileName         string                  `json:"file_name"`
	OriginalContent  string                  `json:"original_content"`
	Tenant           string                  `json:"tenant"`
	AnalysisStatus   AnalysisStatus          `json:"analysis_status"`
	Analysis         *SimplifiedAnalysis     `json:"analysis,omitempty"`
	ContractStatus   ContractStatus          `json:"contract_status"`
	ContractAnalysis *ContractAnalysisResult `json:"contract_analysis,omitempty"`
	ErrorMsg         string                  `json:"error_msg,omitempty"`
	ContractErrorMsg string                  `json:"contract_error_msg,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// SimplifiedAnalysis is the plain-language analysis returned by the
// general-analysis collaborator.
type SimplifiedAnalysis struct {
	Summary             string       `json:"summary"`
	Jargon              []JargonTerm `json:"jargon"`
	PotentialRisks      []string     `json:"potentialRisks"`
	ActionableNextSteps []string     `json:"actionableNextSteps"`
}

type JargonTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// ContractAnalysisResult bundles the extractions used for reminders.
// Every item carries a verbatim SourceSpan quoted from the original text;
// it is propagated unmodified for auditability.
type ContractAnalysisResult struct {
	Obligations  []Obligation  `json:"obligations"`
	KeyDates     []KeyDate     `json:"key_dates"`
	PaymentTerms []PaymentTerm `json:"payment_terms"`
}

type Obligation struct {
	Who        string `json:"who"`
	MustDo     string `json:"must_do"`
	ByWhen     string `json:"by_when"`
	Penalty    string `json:"penalty"`
	SourceSpan string `json:"source_span"`
}

// KeyDate event types.
const (
	KeyDateRenewalWindow  = "Renewal Window Opens"
	KeyDateNoticeDeadline = "Notice Period Deadline"
	KeyDateExpiry         = "Contract Expiry"
	KeyDateOther          = "Other"
)

type KeyDate struct {
	EventType  string `json:"event_type"`
	Date       string `json:"date"`
	Details    string `json:"details"`
	SourceSpan string `json:"source_span"`
}

type PaymentTerm struct {
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"`
	Frequency  string `json:"frequency"`
	Recipient  string `json:"recipient"`
	SourceSpan string `json:"source_span"`
}

// ComparisonResult is the collaborator's side-by-side comparison of documents.
type ComparisonResult struct {
	Similarities   []string `json:"similarities"`
	Differences    []string `json:"differences"`
	Recommendation string   `json:"recommendation"`
}

// NegotiationSuggestion is the collaborator's counter-proposal for a clause
// the user is concerned about.
type NegotiationSuggestion struct {
	RiskExplanation string `json:"risk_explanation"`
	SuggestedClause string `json:"suggested_clause"`
}

// WhatIfSimulationResult answers a "what happens if" scenario from a single
// verbatim contract clause.
type WhatIfSimulationResult struct {
	RelevantClause string `json:"relevant_clause"`
	Explanation    string `json:"explanation"`
}

// BilingualSentencePair aligns one original sentence with its simplified
// translation. LockedTermsFound lists the untranslatable legal terms that
// appear in the sentence and were kept in English.
type BilingualSentencePair struct {
	OriginalSentence   string   `json:"original_sentence"`
	TranslatedSentence string   `json:"translated_sentence"`
	Confidence         string   `json:"confidence"` // high, medium, low
	LockedTermsFound   []string `json:"locked_terms_found"`
}

type BilingualAnalysisResult struct {
	SentencePairs []BilingualSentencePair `json:"sentence_pairs"`
}

// CalendarEvent is an export-time candidate derived from an Obligation or
// KeyDate. DateString is the raw collaborator-supplied date text; it is
// resolved (or dropped) at export time and the event is discarded after the
// calendar file is produced.
type CalendarEvent struct {
	Summary     string
	Description string
	DateString  string
}
