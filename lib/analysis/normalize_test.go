// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"reflect"
	"strings"
	"testing"

	"github.com/issuepilot/issuepilot/lib/devin"
	"github.com/issuepilot/issuepilot/lib/github"
)

func bugIssue() *github.Issue {
	return &github.Issue{
		Number: 42,
		Title:  "Crash when saving empty file",
		Labels: []github.Label{{Name: "bug"}},
	}
}

func TestNormalize_StructuredJSONRoundTrip(t *testing.T) {
	session := devin.Session{
		"status": "completed",
		"output": `{
			"summary": "The crash is a nil map write in the save path.",
			"confidence": 0.92,
			"implementation_steps": ["Guard the map", "Add a regression test"],
			"complexity": "Low",
			"potential_challenges": ["Save path has no existing tests"],
			"success_criteria": ["Saving an empty file succeeds"]
		}`,
	}

	result := Normalize(session, "devin-abc", bugIssue())

	if result.Summary != "The crash is a nil map write in the save path." {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92 verbatim", result.Confidence)
	}
	wantSteps := []string{"Guard the map", "Add a regression test"}
	if !reflect.DeepEqual(result.Steps, wantSteps) {
		t.Errorf("steps = %v, want %v", result.Steps, wantSteps)
	}
	if result.Complexity != "Low" {
		t.Errorf("complexity = %q", result.Complexity)
	}
	if len(result.PotentialChallenges) != 1 || len(result.SuccessCriteria) != 1 {
		t.Errorf("challenges = %v, criteria = %v", result.PotentialChallenges, result.SuccessCriteria)
	}
	if result.Status != "completed" {
		t.Errorf("status = %q", result.Status)
	}
	if result.SessionID != "devin-abc" {
		t.Errorf("session id = %q", result.SessionID)
	}
}

func TestNormalize_FencedJSON(t *testing.T) {
	session := devin.Session{
		"output": "```json\n{\"summary\": \"Fenced summary.\", \"confidence\": 0.5, \"steps\": [\"one\", \"two\"]}\n```",
	}

	result := Normalize(session, "devin-abc", nil)

	if result.Summary != "Fenced summary." {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Confidence != 0.5 {
		t.Errorf("confidence = %v", result.Confidence)
	}
	wantSteps := []string{"one", "two"}
	if !reflect.DeepEqual(result.Steps, wantSteps) {
		t.Errorf("steps = %v", result.Steps)
	}
}

func TestNormalize_TextConfidenceAndPhases(t *testing.T) {
	text := "Analysis of the reported crash.\n\n" +
		"The save handler writes to an uninitialized map whenever the buffer is empty at flush time.\n\n" +
		"Confidence Score: 0.82\n\n" +
		"Phase 1: Reproduce the crash with an empty file\n" +
		"Phase 2: Initialize the map before the save loop\n" +
		"Phase 3: Add a regression test\n"
	session := devin.Session{"status": "completed", "output": text}

	result := Normalize(session, "devin-abc", nil)

	if result.Confidence != 0.82 {
		t.Errorf("confidence = %v, want 0.82 from text", result.Confidence)
	}
	wantSteps := []string{
		"Reproduce the crash with an empty file",
		"Initialize the map before the save loop",
		"Add a regression test",
	}
	if !reflect.DeepEqual(result.Steps, wantSteps) {
		t.Errorf("steps = %v, want %v", result.Steps, wantSteps)
	}
	if result.RawResponse == "" {
		t.Error("raw response not recorded")
	}
}

func TestNormalize_OutOfRangeConfidenceFallsBack(t *testing.T) {
	// Percentage-style scores from any source are discarded and the
	// label heuristic (0.75 for a bug issue) applies instead.
	sessions := map[string]devin.Session{
		"result object":   {"result": map[string]any{"confidence": float64(85)}},
		"structured json": {"output": `{"summary": "s.", "confidence": 85}`},
		"free text":       {"output": "The save path crashes on empty buffers whenever flush runs.\n\nConfidence Score: 85\n"},
	}
	for name, session := range sessions {
		result := Normalize(session, "devin-abc", bugIssue())
		if result.Confidence != 0.75 {
			t.Errorf("%s: confidence = %v, want heuristic 0.75", name, result.Confidence)
		}
	}
}

func TestNormalize_ResultObjectWinsOverText(t *testing.T) {
	session := devin.Session{
		"result": map[string]any{
			"summary":    "Structured summary.",
			"confidence": 0.7,
			"steps":      []any{"a", "b", "c"},
		},
		"output": `{"summary": "Text summary.", "confidence": 0.1}`,
	}

	result := Normalize(session, "devin-abc", nil)

	if result.Summary != "Structured summary." {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Confidence != 0.7 {
		t.Errorf("confidence = %v", result.Confidence)
	}
	if !reflect.DeepEqual(result.Steps, []string{"a", "b", "c"}) {
		t.Errorf("steps = %v", result.Steps)
	}
}

func TestNormalize_EmptySessionDefaults(t *testing.T) {
	for _, session := range []devin.Session{nil, {}} {
		result := Normalize(session, "devin-abc", bugIssue())
		if result == nil {
			t.Fatal("Normalize returned nil")
		}
		if result.Summary != placeholderSummary {
			t.Errorf("summary = %q", result.Summary)
		}
		if result.Confidence != 0.75 {
			t.Errorf("confidence = %v, want heuristic 0.75 for bug label", result.Confidence)
		}
		if len(result.Steps) == 0 {
			t.Error("steps must never be empty")
		}
		if result.Status != "running" {
			t.Errorf("status = %q, want running default", result.Status)
		}
		if result.Complexity != "Medium" {
			t.Errorf("complexity = %q", result.Complexity)
		}
		if result.PotentialChallenges == nil || result.SuccessCriteria == nil {
			t.Error("challenge and criteria slices must be non-nil")
		}
	}
}

func TestNormalize_MessagesExtraction(t *testing.T) {
	session := devin.Session{
		"status": "completed",
		"messages": []any{
			map[string]any{"type": "user_request", "message": "Analyze this issue"},
			map[string]any{"type": "devin_message", "message": "Looking at the handler now."},
			map[string]any{"type": "devin_message", "message": "Found the root cause in the flush path."},
		},
	}

	result := Normalize(session, "devin-abc", nil)

	if !strings.Contains(result.Summary, "flush path") && !strings.Contains(result.RawResponse, "flush path") {
		t.Errorf("agent messages not surfaced: summary=%q raw=%q", result.Summary, result.RawResponse)
	}
	if strings.Contains(result.RawResponse, "Analyze this issue") {
		t.Error("user message leaked into response text")
	}
}

func TestNormalize_UnparsableTextBecomesSummary(t *testing.T) {
	session := devin.Session{"output": "short note"}

	result := Normalize(session, "devin-abc", nil)

	if result.Summary != "short note" {
		t.Errorf("summary = %q, want raw text fallback", result.Summary)
	}
	if !reflect.DeepEqual(result.Steps, GenericSteps()) {
		t.Errorf("steps = %v, want generic steps", result.Steps)
	}
}

func TestExtractResponseText_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		session devin.Session
		want    string
	}{
		{
			name:    "direct field beats nested result",
			session: devin.Session{"output": "direct", "result": map[string]any{"output": "nested"}},
			want:    "direct",
		},
		{
			name:    "nested result beats data",
			session: devin.Session{"result": map[string]any{"text": "from result"}, "data": map[string]any{"text": "from data"}},
			want:    "from result",
		},
		{
			name: "raw_data messages are the last resort",
			session: devin.Session{
				"raw_data": map[string]any{
					"messages": []any{map[string]any{"type": "devin_message", "message": "buried"}},
				},
			},
			want: "buried",
		},
		{
			name:    "nothing found",
			session: devin.Session{"status": "running"},
			want:    "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExtractResponseText(test.session); got != test.want {
				t.Errorf("ExtractResponseText = %q, want %q", got, test.want)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\": 1}", "{\"a\": 1}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"  ```json\n{\"a\": 1}\n```  ", "{\"a\": 1}"},
	}
	for _, test := range tests {
		if got := stripCodeFence(test.in); got != test.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
