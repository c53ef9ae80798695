// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import "strings"

// Result is the structured outcome of analyzing an issue. Every field
// is populated on every code path: Steps is never empty, Confidence is
// always in [0,1], Complexity defaults to "Medium".
type Result struct {
	SessionID           string   `json:"session_id"`
	Summary             string   `json:"summary"`
	DetailedAnalysis    string   `json:"detailed_analysis,omitempty"`
	Confidence          float64  `json:"confidence"`
	ConfidenceReasoning string   `json:"confidence_reasoning,omitempty"`
	Steps               []string `json:"steps"`
	Complexity          string   `json:"complexity"`
	PotentialChallenges []string `json:"potential_challenges"`
	SuccessCriteria     []string `json:"success_criteria"`
	Status              string   `json:"status"`
	StatusEnum          string   `json:"status_enum,omitempty"`

	// Note explains degraded or fallback mode when set.
	Note string `json:"note,omitempty"`

	// RawResponse is a truncated copy of the agent's response text,
	// kept for diagnostics.
	RawResponse string `json:"devin_raw_response,omitempty"`

	// SessionURL links to the live session in the Devin UI.
	SessionURL string `json:"session_url,omitempty"`
}

// Execution is the outcome of requesting implementation of a plan.
type Execution struct {
	SessionID   string   `json:"session_id"`
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	SessionURL  string   `json:"session_url,omitempty"`
	IssueNumber int      `json:"issue_number,omitempty"`
	IssueTitle  string   `json:"issue_title,omitempty"`
	ManualSteps []string `json:"manual_steps,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// completedStatuses are the states in which an analysis is worth
// posting back to the issue. "blocked" counts: the agent waiting on
// human input has still produced its analysis.
var completedStatuses = map[string]bool{
	"completed": true,
	"success":   true,
	"done":      true,
	"finished":  true,
	"blocked":   true,
}

// Completed reports whether the result reached a state worth posting
// as an issue comment.
func (result *Result) Completed() bool {
	return completedStatuses[strings.ToLower(result.Status)] ||
		completedStatuses[strings.ToLower(result.StatusEnum)]
}

// GenericSteps returns the fixed fallback step list used whenever the
// agent supplied none. Callers own the returned slice.
func GenericSteps() []string {
	return []string{
		"Review the issue requirements",
		"Identify affected files",
		"Implement the necessary changes",
		"Add tests for the changes",
		"Update documentation if needed",
	}
}
