// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"encoding/json"
	"strings"

	"github.com/issuepilot/issuepilot/lib/devin"
	"github.com/issuepilot/issuepilot/lib/github"
)

// placeholderSummary is used when no response content was found at
// all.
const placeholderSummary = "Analysis in progress - Devin has not provided output yet"

// rawResponseLimit bounds the diagnostic echo of the agent's text.
const rawResponseLimit = 1000

// structuredResponse is the shape the agent returns when it answers
// in JSON (sometimes wrapped in a markdown code fence). Confidence is
// a pointer so an absent field is distinguishable from zero.
type structuredResponse struct {
	Summary             string   `json:"summary"`
	DetailedAnalysis    string   `json:"detailed_analysis"`
	Confidence          *float64 `json:"confidence"`
	ConfidenceReasoning string   `json:"confidence_reasoning"`
	ImplementationSteps []string `json:"implementation_steps"`
	Steps               []string `json:"steps"`
	Complexity          string   `json:"complexity"`
	PotentialChallenges []string `json:"potential_challenges"`
	SuccessCriteria     []string `json:"success_criteria"`
}

// validConfidence reports whether value can be used as a Confidence,
// which is always in [0, 1]. Agents occasionally report percentages
// ("Confidence Score: 85"); out-of-range values are discarded so the
// heuristic default applies instead.
func validConfidence(value float64) bool {
	return value >= 0 && value <= 1
}

// Normalize coerces a raw session payload into a fully-populated
// Result. It never fails: malformed payloads degrade through the
// extractor pipeline to heuristic defaults, and an internal panic
// degrades to a fallback result carrying a note.
//
// Field precedence, first non-empty wins: the session's structured
// result object, then JSON parsed from the response text, then
// heuristic text extraction, then defaults (heuristic confidence,
// generic steps, placeholder summary).
func Normalize(session devin.Session, sessionID string, issue *github.Issue) (result *Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = FallbackAnalysis(issue, nil)
			result.SessionID = sessionID
			result.Status = "running"
			result.Note = "Analysis normalization failed internally. This is a degraded result."
		}
	}()

	if session == nil {
		session = devin.Session{}
	}

	var (
		summary             string
		detailedAnalysis    string
		confidence          float64
		confidenceReasoning string
		steps               []string
		complexity          string
		challenges          []string
		criteria            []string
	)

	// Structured fields on the session's result object take
	// precedence over anything parsed from text.
	if resultObject, ok := session["result"].(map[string]any); ok {
		if value, ok := resultObject["summary"].(string); ok {
			summary = value
		}
		if value, ok := resultObject["confidence"].(float64); ok && validConfidence(value) {
			confidence = value
		}
		steps = stringList(resultObject["steps"])
	}

	text := ExtractResponseText(session)
	if text != "" {
		if structured, ok := parseStructuredJSON(text); ok {
			if summary == "" {
				summary = structured.Summary
			}
			detailedAnalysis = structured.DetailedAnalysis
			if confidence == 0 && structured.Confidence != nil && validConfidence(*structured.Confidence) {
				confidence = *structured.Confidence
			}
			confidenceReasoning = structured.ConfidenceReasoning
			if len(steps) == 0 {
				if len(structured.ImplementationSteps) > 0 {
					steps = structured.ImplementationSteps
				} else {
					steps = structured.Steps
				}
			}
			complexity = structured.Complexity
			challenges = structured.PotentialChallenges
			criteria = structured.SuccessCriteria
		} else {
			parsed := parseTextResponse(text)
			if summary == "" {
				summary = parsed.summary
			}
			if confidence == 0 && parsed.hasConfidence {
				confidence = parsed.confidence
			}
			if len(steps) == 0 {
				steps = parsed.steps
			}
		}

		// A response was found but nothing in it parsed as a
		// summary: surface the whole response rather than a
		// placeholder.
		if summary == "" {
			summary = text
		}
	}

	if summary == "" {
		summary = placeholderSummary
	}
	if confidence == 0 {
		confidence = HeuristicConfidence(issue)
	}
	if len(steps) == 0 {
		steps = GenericSteps()
	}
	if complexity == "" {
		complexity = "Medium"
	}
	if challenges == nil {
		challenges = []string{}
	}
	if criteria == nil {
		criteria = []string{}
	}

	status := session.Status()
	if status == "" {
		status = "running"
	}

	result = &Result{
		SessionID:           sessionID,
		Summary:             summary,
		DetailedAnalysis:    detailedAnalysis,
		Confidence:          confidence,
		ConfidenceReasoning: confidenceReasoning,
		Steps:               steps,
		Complexity:          complexity,
		PotentialChallenges: challenges,
		SuccessCriteria:     criteria,
		Status:              status,
		StatusEnum:          session.StatusEnum(),
	}
	if text != "" {
		result.RawResponse = truncate(text, rawResponseLimit)
	}
	return result
}

// parseStructuredJSON attempts to parse the response text as a JSON
// object, stripping a markdown code fence first if present.
func parseStructuredJSON(text string) (*structuredResponse, bool) {
	candidate := stripCodeFence(text)
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}
	var structured structuredResponse
	if err := json.Unmarshal([]byte(candidate), &structured); err != nil {
		return nil, false
	}
	return &structured, true
}

// stripCodeFence removes a leading/trailing markdown code fence
// (``` or ```json) around the text, if both are present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	_, rest, found := strings.Cut(trimmed, "\n")
	if !found {
		return trimmed
	}
	rest = strings.TrimSpace(rest)
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// stringList coerces a decoded JSON value into a string slice,
// skipping non-string entries.
func stringList(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	var list []string
	for _, entry := range raw {
		if text, ok := entry.(string); ok {
			list = append(list, text)
		}
	}
	return list
}
