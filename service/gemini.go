package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/model"
)

// Analyzer is the collaborator contract the dispatcher depends on. Both
// operations are opaque request/response calls that either return a result
// or fail with a generic analysis error.
type Analyzer interface {
	AnalyzeGeneral(ctx context.Context, text string) (*model.SimplifiedAnalysis, error)
	AnalyzeContract(ctx context.Context, text string) (*model.ContractAnalysisResult, error)
}

// GeminiService calls the generative-AI API that performs all document
// analyses. Every method builds a prompt, requests a strict JSON response
// and decodes it into the corresponding result type.
type GeminiService struct {
	config     *config.GeminiConfig
	httpClient *http.Client
}

func NewGeminiService(cfg *config.GeminiConfig) *GeminiService {
	return &GeminiService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// generateRequest is the request body for the generateContent endpoint.
type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

// generateResponse is the response body from the generateContent endpoint.
type generateResponse struct {
	Candidates []generateCandidate `json:"candidates"`
	Error      *generateError      `json:"error,omitempty"`
}

type generateCandidate struct {
	Content generateContent `json:"content"`
}

type generateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// generate sends a prompt and unmarshals the model's JSON answer into out.
func (s *GeminiService) generate(ctx context.Context, prompt string, out any) error {
	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.config.APIURL, s.config.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Error != nil {
		return fmt.Errorf("gemini API error: %s", result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini API returned no candidates")
	}

	answer := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(answer), out); err != nil {
		return fmt.Errorf("failed to parse model answer: %w", err)
	}

	return nil
}

// AnalyzeGeneral runs the plain-language analysis of a document.
func (s *GeminiService) AnalyzeGeneral(ctx context.Context, text string) (*model.SimplifiedAnalysis, error) {
	prompt := fmt.Sprintf(`You are an expert legal analyst. Analyze the following document and break it down for a layperson.
Respond ONLY with a JSON object of the form:
{"summary": string, "jargon": [{"term": string, "definition": string}], "potentialRisks": [string], "actionableNextSteps": [string]}
- summary: a concise, plain-language summary of the entire document.
- jargon: legal terms found in the document, each with a simple definition.
- potentialRisks: potential risks, unfavorable clauses, or ambiguous language.
- actionableNextSteps: concrete next steps the reader should consider.

Document:
---
%s
---`, text)

	var result model.SimplifiedAnalysis
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}
	return &result, nil
}

// AnalyzeContract extracts obligations, key dates and payment terms for the
// reminders feature. Dates are requested in YYYY-MM-DD where a specific day
// exists; recurring or relative terms stay descriptive and are filtered out
// later at calendar export.
func (s *GeminiService) AnalyzeContract(ctx context.Context, text string) (*model.ContractAnalysisResult, error) {
	prompt := fmt.Sprintf(`You are a meticulous legal AI assistant specializing in contract analysis. Read the following contract and extract key, actionable information.
Respond ONLY with a JSON object of the form:
{"obligations": [{"who": string, "must_do": string, "by_when": string, "penalty": string, "source_span": string}],
 "key_dates": [{"event_type": "Renewal Window Opens"|"Notice Period Deadline"|"Contract Expiry"|"Other", "date": string, "details": string, "source_span": string}],
 "payment_terms": [{"amount": string, "due_date": string, "frequency": string, "recipient": string, "source_span": string}]}
Rules:
1. For all dates ('by_when', 'date'), use YYYY-MM-DD when a specific date is mentioned. If the date is relative or recurring, describe it clearly (e.g. "Net 30", "The 1st of every month").
2. For every extracted item you MUST include 'source_span': the exact, verbatim quote from the document that is the source of the information.
3. If no items exist for a category, return an empty array for it.
4. State 'None specified' for a missing penalty.

Contract Text to Analyze:
---
%s
---`, text)

	var result model.ContractAnalysisResult
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to perform contract analysis: %w", err)
	}
	return &result, nil
}

// Compare contrasts two or more documents for a layperson.
func (s *GeminiService) Compare(ctx context.Context, docs []*model.Document) (*model.ComparisonResult, error) {
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "\nDOCUMENT %d (%s):\n---\n%s\n---\n", i+1, doc.FileName, doc.OriginalContent)
	}

	prompt := fmt.Sprintf(`You are an expert legal analyst. Compare and contrast the following documents. Identify key similarities and differences, and provide a concluding recommendation, focused on what matters most for a layperson.
Respond ONLY with a JSON object of the form:
{"similarities": [string], "differences": [string], "recommendation": string}
%s`, sb.String())

	var result model.ComparisonResult
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to compare documents: %w", err)
	}
	return &result, nil
}

// NegotiationSuggestion drafts a balanced counter-clause for a concern the
// user raises about the contract.
func (s *GeminiService) NegotiationSuggestion(ctx context.Context, text, query string) (*model.NegotiationSuggestion, error) {
	prompt := fmt.Sprintf(`You are an expert contract negotiation AI. Help the user analyze a contract clause they are concerned about and suggest a fair counter-proposal.
The user's concern: %q
Scan the contract text for the clause(s) relevant to the concern.
Respond ONLY with a JSON object of the form:
{"risk_explanation": string, "suggested_clause": string}
- risk_explanation: why the clause is risky, one-sided or problematic, in simple terms.
- suggested_clause: a complete, professionally worded, more balanced counter-clause the user could propose.

Contract Text:
---
%s
---`, query, text)

	var result model.NegotiationSuggestion
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to generate negotiation suggestion: %w", err)
	}
	return &result, nil
}

// WhatIfSimulation answers a hypothetical scenario from the single most
// relevant contract clause.
func (s *GeminiService) WhatIfSimulation(ctx context.Context, text, scenario string) (*model.WhatIfSimulationResult, error) {
	prompt := fmt.Sprintf(`You are an expert legal AI that simulates outcomes based on contract clauses. Analyze the user's "what-if" scenario against the contract text.
The scenario: %q
Find the single most relevant clause, extract it verbatim, and explain the outcome based only on that clause. If no clause directly addresses the scenario, say so and explain that the outcome is undefined by the contract.
Respond ONLY with a JSON object of the form:
{"relevant_clause": string, "explanation": string}

Contract Text:
---
%s
---`, scenario, text)

	var result model.WhatIfSimulationResult
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to perform simulation: %w", err)
	}
	return &result, nil
}

// lockedTerms are legal terms that must survive translation in their
// original English form. Translating them loses the precise legal meaning.
var lockedTerms = []string{
	"force majeure", "indemnify", "liability", "jurisdiction",
	"heretofore", "whereas", "arbitration", "confidentiality",
	"non-disclosure", "warranties", "severability", "prima facie",
}

// BilingualAnalysis translates and simplifies the document sentence by
// sentence into the target language, keeping the locked terms in English.
func (s *GeminiService) BilingualAnalysis(ctx context.Context, text, targetLanguage string) (*model.BilingualAnalysisResult, error) {
	prompt := fmt.Sprintf(`You are an expert legal document translator and simplifier. Process the following legal document, sentence by sentence, for a user who is not a native English speaker.
Target Language: %s
Term Lock List (MUST NOT BE TRANSLATED): you absolutely MUST preserve these English terms exactly as they are in the translated output if they appear: %s
Instructions:
1. Segment the document into individual sentences or short, logical clauses.
2. For each sentence provide the original English sentence, a simplified translation in the target language, your confidence ("high", "medium" or "low") that the translation captures the legal nuance, and the list of locked terms found in the sentence.
3. Respond ONLY with a JSON object of the form:
{"sentence_pairs": [{"original_sentence": string, "translated_sentence": string, "confidence": "high"|"medium"|"low", "locked_terms_found": [string]}]}

Document to Analyze:
---
%s
---`, targetLanguage, strings.Join(lockedTerms, ", "), text)

	var result model.BilingualAnalysisResult
	if err := s.generate(ctx, prompt, &result); err != nil {
		return nil, fmt.Errorf("failed to perform bilingual analysis: %w", err)
	}
	return &result, nil
}
