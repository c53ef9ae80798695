// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import (
	"fmt"
	"strings"

	"github.com/issuepilot/issuepilot/lib/github"
)

// AnalysisPrompt builds the task description for an analysis session.
func AnalysisPrompt(issue *github.Issue) string {
	body := issue.Body
	if body == "" {
		body = "No description provided"
	}
	labels := "None"
	if names := issue.LabelNames(); len(names) > 0 {
		labels = strings.Join(names, ", ")
	}

	return fmt.Sprintf(`Analyze this GitHub issue and provide:
1. A brief summary of what needs to be done
2. A confidence score (0.0 to 1.0) indicating how feasible this is to solve
3. A step-by-step implementation plan

GitHub Issue #%d:
Title: %s

Description:
%s

Labels: %s

Please respond with a structured analysis including confidence level and actionable steps.`,
		issue.Number, issue.Title, body, labels)
}

// ExecutionPrompt builds the task description for an execution
// session implementing a previously analyzed plan.
func ExecutionPrompt(issue *github.Issue, repo string, steps []string) string {
	var plan strings.Builder
	for i, step := range steps {
		fmt.Fprintf(&plan, "%d. %s\n", i+1, step)
	}

	return fmt.Sprintf(`Implement the proposed fix for GitHub issue #%d in repository %s.

Issue Title: %s

Implementation Plan:
%s
Please implement this solution and create a pull request with the changes. Include proper commit messages and PR description.`,
		issue.Number, repo, issue.Title, plan.String())
}

// UnifiedPrompt builds the task description for a combined
// analysis-plus-implementation session.
func UnifiedPrompt(issue *github.Issue, repo string) string {
	body := issue.Body
	if body == "" {
		body = "No description provided"
	}
	labels := "None"
	if names := issue.LabelNames(); len(names) > 0 {
		labels = strings.Join(names, ", ")
	}

	return fmt.Sprintf(`Analyze and implement a fix for this GitHub issue in repository %s.

First provide:
1. A brief summary of what needs to be done
2. A confidence score (0.0 to 1.0) indicating how feasible this is to solve
3. A step-by-step implementation plan

Then implement the solution and create a pull request with the changes. Include proper commit messages and PR description.

GitHub Issue #%d:
Title: %s

Description:
%s

Labels: %s`,
		repo, issue.Number, issue.Title, body, labels)
}
