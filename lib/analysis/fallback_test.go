// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/issuepilot/issuepilot/lib/devin"
)

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  bool
	}{
		{"nil", nil, false},
		{"structured 429", &devin.APIError{StatusCode: 429, Message: "slow down"}, true},
		{"wrapped structured 429", fmt.Errorf("create session: %w", &devin.APIError{StatusCode: 429}), true},
		{"structured 500", &devin.APIError{StatusCode: 500, Message: "oops"}, false},
		{"stringified rate limit", errors.New("devin: Rate limit exceeded"), true},
		{"stringified 429", errors.New("unexpected status 429"), true},
		{"ordinary failure", errors.New("connection refused"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsRateLimitError(test.cause); got != test.want {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", test.cause, got, test.want)
			}
		})
	}
}

func TestFallbackAnalysis_RateLimitNote(t *testing.T) {
	rateLimited := FallbackAnalysis(bugIssue(), &devin.APIError{StatusCode: 429, Message: "too many requests"})
	if !strings.Contains(rateLimited.Note, "rate limit") {
		t.Errorf("rate-limited note = %q", rateLimited.Note)
	}

	misconfigured := FallbackAnalysis(bugIssue(), errors.New("401 unauthorized"))
	if !strings.Contains(misconfigured.Note, "configuration") {
		t.Errorf("generic note = %q", misconfigured.Note)
	}
}

func TestFallbackAnalysis_Shape(t *testing.T) {
	result := FallbackAnalysis(bugIssue(), errors.New("boom"))

	if result.SessionID != FallbackSessionID {
		t.Errorf("session id = %q", result.SessionID)
	}
	if !strings.Contains(result.Summary, "bug issue") {
		t.Errorf("summary = %q, want first label woven in", result.Summary)
	}
	if result.Confidence != 0.75 {
		t.Errorf("confidence = %v, want heuristic score", result.Confidence)
	}
	if len(result.Steps) != 5 {
		t.Errorf("steps = %v", result.Steps)
	}
	if result.Status != "completed" {
		t.Errorf("status = %q", result.Status)
	}
	if !result.Completed() {
		t.Error("fallback analysis must count as completed")
	}

	unlabeled := FallbackAnalysis(labeledIssue("Anything"), nil)
	if !strings.Contains(unlabeled.Summary, "general issue") {
		t.Errorf("unlabeled summary = %q", unlabeled.Summary)
	}
}

func TestFallbackExecution(t *testing.T) {
	analysis := &Result{Steps: []string{"one", "two"}}
	execution := FallbackExecution(bugIssue(), analysis, errors.New("connection refused"))

	if execution.SessionID != FallbackExecutionID {
		t.Errorf("session id = %q", execution.SessionID)
	}
	if execution.Status != "unavailable" {
		t.Errorf("status = %q", execution.Status)
	}
	if execution.IssueNumber != 42 {
		t.Errorf("issue number = %d", execution.IssueNumber)
	}
	if len(execution.ManualSteps) != 2 {
		t.Errorf("manual steps = %v", execution.ManualSteps)
	}
	if !strings.Contains(execution.Note, "connection refused") {
		t.Errorf("note = %q", execution.Note)
	}

	// Rate limiting changes the guidance in the message.
	limited := FallbackExecution(bugIssue(), analysis, errors.New("429 too many requests"))
	if !strings.Contains(limited.Message, "rate limit") {
		t.Errorf("rate-limited message = %q", limited.Message)
	}
}

func TestResultCompleted(t *testing.T) {
	tests := []struct {
		status     string
		statusEnum string
		want       bool
	}{
		{"completed", "", true},
		{"Finished", "", true},
		{"blocked", "", true},
		{"running", "blocked", true},
		{"running", "", false},
		{"failed", "", false},
	}
	for _, test := range tests {
		result := &Result{Status: test.status, StatusEnum: test.statusEnum}
		if got := result.Completed(); got != test.want {
			t.Errorf("Completed(%q, %q) = %v, want %v", test.status, test.statusEnum, got, test.want)
		}
	}
}

func TestFormatComment(t *testing.T) {
	result := &Result{
		Summary:    "Nil map write in the save path.",
		Confidence: 0.82,
		Steps:      []string{"Guard the map", "Add a regression test"},
	}

	comment := FormatComment(result)

	for _, want := range []string{
		"**Devin AI Analysis**",
		"**Summary:** Nil map write in the save path.",
		"**Confidence Score:** 82%",
		"**Proposed Implementation Steps:**",
		"1. Guard the map",
		"2. Add a regression test",
		"*This analysis was generated automatically by Devin AI*",
	} {
		if !strings.Contains(comment, want) {
			t.Errorf("comment missing %q:\n%s", want, comment)
		}
	}
}
