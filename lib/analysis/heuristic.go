// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"strings"

	"github.com/issuepilot/issuepilot/lib/github"
)

// HeuristicConfidence scores an issue from its metadata when the agent
// supplies no confidence of its own. Deterministic and side-effect
// free; exactly one adjustment applies, first match wins:
//
//	bug label or "fix" in the title  -> 0.75
//	feature or enhancement label     -> 0.60
//	documentation label              -> 0.85
//	otherwise                        -> 0.65
func HeuristicConfidence(issue *github.Issue) float64 {
	if issue == nil {
		return 0.65
	}

	title := strings.ToLower(issue.Title)
	labels := make(map[string]bool, len(issue.Labels))
	for _, label := range issue.Labels {
		labels[strings.ToLower(label.Name)] = true
	}

	switch {
	case labels["bug"] || strings.Contains(title, "fix"):
		return 0.75
	case labels["feature"] || labels["enhancement"]:
		return 0.60
	case labels["documentation"]:
		return 0.85
	default:
		return 0.65
	}
}
