// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"fmt"
	"strings"

	"github.com/issuepilot/issuepilot/lib/devin"
	"github.com/issuepilot/issuepilot/lib/github"
)

// FallbackSessionID marks an analysis produced without a remote
// session.
const FallbackSessionID = "fallback-session"

// FallbackExecutionID marks an execution result produced without a
// remote session.
const FallbackExecutionID = "fallback-execution"

// IsRateLimitError reports whether cause is a rate-limit failure:
// a structured 429 from either external API, or an already-stringified
// error mentioning rate limiting. The substring check exists because
// classification often happens after the transport error has been
// flattened to text.
func IsRateLimitError(cause error) bool {
	if cause == nil {
		return false
	}
	if devin.IsRateLimited(cause) || github.IsRateLimited(cause) {
		return true
	}
	message := strings.ToLower(cause.Error())
	return strings.Contains(message, "rate limit") || strings.Contains(message, "429")
}

// FallbackAnalysis produces a fully-populated analysis when the remote
// call failed entirely. The note distinguishes rate limiting (retry
// later) from other failures (integration likely misconfigured).
func FallbackAnalysis(issue *github.Issue, cause error) *Result {
	category := "general"
	if issue != nil && len(issue.Labels) > 0 {
		category = strings.ToLower(issue.Labels[0].Name)
	}

	note := "This is a fallback analysis. Devin API integration may need configuration."
	if IsRateLimitError(cause) {
		note = "Devin API rate limit reached. This is a fallback analysis. Please try again in a few minutes for AI-powered analysis."
	}

	return &Result{
		SessionID:           FallbackSessionID,
		Summary:             fmt.Sprintf("This appears to be a %s issue that requires investigation and implementation.", category),
		Confidence:          HeuristicConfidence(issue),
		Steps: []string{
			"Analyze the issue requirements in detail",
			"Locate the relevant code sections",
			"Implement the proposed solution",
			"Write or update tests",
			"Review and validate the changes",
		},
		Complexity:          "Medium",
		PotentialChallenges: []string{},
		SuccessCriteria:     []string{},
		Status:              "completed",
		Note:                note,
	}
}

// FallbackExecution produces a fully-populated execution result when
// the remote call failed, pointing the user at manual implementation
// of the analyzed plan.
func FallbackExecution(issue *github.Issue, analysis *Result, cause error) *Execution {
	message := "Devin API is currently unavailable. "
	if IsRateLimitError(cause) {
		message += "You've hit the API rate limit. Please try again in a few minutes, or implement the solution manually using the analysis above."
	} else {
		message += "Please implement the solution manually using the analysis above, or try again later."
	}

	execution := &Execution{
		SessionID: FallbackExecutionID,
		Status:    "unavailable",
		Message:   message,
		Note:      fmt.Sprintf("Devin API Error: %v. Manual implementation required.", cause),
	}
	if issue != nil {
		execution.IssueNumber = issue.Number
		execution.IssueTitle = issue.Title
	}
	if analysis != nil {
		execution.ManualSteps = append([]string(nil), analysis.Steps...)
	}
	return execution
}
