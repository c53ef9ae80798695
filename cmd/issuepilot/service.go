// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/issuepilot/issuepilot/lib/analysis"
	"github.com/issuepilot/issuepilot/lib/clock"
	"github.com/issuepilot/issuepilot/lib/config"
	"github.com/issuepilot/issuepilot/lib/devin"
	"github.com/issuepilot/issuepilot/lib/github"
	"github.com/issuepilot/issuepilot/lib/store"
)

// errAnalysisRequired means execution was requested for an issue with
// no cached analysis. Surfaced to the client as a 400.
var errAnalysisRequired = errors.New("Please analyze the issue first before executing")

// issueSource is the slice of the GitHub client the service uses.
type issueSource interface {
	ListIssues(ctx context.Context, options github.ListIssuesOptions) ([]github.Issue, error)
	GetIssue(ctx context.Context, number int) (*github.Issue, error)
	CreateIssueComment(ctx context.Context, number int, body string) (*github.Comment, error)
}

// agentAPI is the slice of the Devin client the service uses.
type agentAPI interface {
	CreateSession(ctx context.Context, prompt string, metadata map[string]any) (string, devin.Session, error)
	GetSession(ctx context.Context, sessionID string) (devin.Session, error)
	GetSessionDetail(ctx context.Context, sessionID string) (*devin.SessionDetail, error)
	WaitForResult(ctx context.Context, sessionID string, maxWait, interval time.Duration) (devin.Session, error)
}

// Service orchestrates issue analysis and execution: fetch the issue,
// drive an agent session, normalize the outcome, cache it, and post
// the analysis back to the issue. Either client may be nil when its
// credentials are not configured; every operation then degrades to its
// fallback path instead of failing.
type Service struct {
	config *config.Config
	issues issueSource
	agent  agentAPI
	cache  *store.Store
	clock  clock.Clock
	logger *slog.Logger
}

// AnalyzeOptions controls one analysis request.
type AnalyzeOptions struct {
	// PostComment posts the finished analysis back to the issue.
	PostComment bool

	// Unified asks the agent to analyze and implement in a single
	// session instead of stopping at the plan.
	Unified bool
}

// AnalyzeIssue runs a full synchronous analysis of one issue. The only
// error it returns is a failure to fetch the issue itself; any agent
// failure degrades to a fallback analysis.
func (s *Service) AnalyzeIssue(ctx context.Context, issueNumber int, options AnalyzeOptions) (*analysis.Result, error) {
	if s.issues == nil {
		return nil, fmt.Errorf("github client not configured")
	}
	issue, err := s.issues.GetIssue(ctx, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("fetching issue #%d: %w", issueNumber, err)
	}

	sessionKind := "analysis"
	if options.Unified {
		sessionKind = "unified analysis+implementation"
	}
	s.logger.Info("starting issue analysis",
		"issue", issueNumber,
		"kind", sessionKind,
		"post_comment", options.PostComment,
	)

	result := s.runAnalysisSession(ctx, issue, options.Unified)
	if result.SessionID != "" && result.SessionID != analysis.FallbackSessionID && result.SessionURL == "" {
		result.SessionURL = devin.SessionURL(result.SessionID)
	}
	s.cache.SetAnalysis(issue, result)

	s.logger.Info("analysis finished",
		"issue", issueNumber,
		"session_id", result.SessionID,
		"status", result.Status,
		"confidence", result.Confidence,
		"steps", len(result.Steps),
	)

	if options.PostComment {
		s.postAnalysisComment(ctx, issueNumber, result)
	}
	return result, nil
}

// runAnalysisSession creates the agent session, waits for it, and
// normalizes whatever came back. It never returns an error: session
// failures degrade to partial or fallback results.
func (s *Service) runAnalysisSession(ctx context.Context, issue *github.Issue, unified bool) *analysis.Result {
	if s.agent == nil {
		return analysis.FallbackAnalysis(issue, errors.New("devin API key not configured"))
	}

	prompt := devin.AnalysisPrompt(issue)
	metadata := map[string]any{"issue_number": issue.Number, "type": "analysis"}
	if unified {
		prompt = devin.UnifiedPrompt(issue, s.config.GitHub.Repo)
		metadata["type"] = "unified"
	}

	sessionID, _, err := s.agent.CreateSession(ctx, prompt, metadata)
	if err != nil {
		s.logger.Error("creating agent session failed", "issue", issue.Number, "error", err)
		return analysis.FallbackAnalysis(issue, err)
	}

	session, err := s.agent.WaitForResult(ctx, sessionID, s.config.Devin.MaxWait(), s.config.Devin.PollInterval())
	if err == nil {
		return analysis.Normalize(session, sessionID, issue)
	}

	s.logger.Warn("session did not finish cleanly, using current state",
		"session_id", sessionID,
		"error", err,
	)

	// The session exists but polling failed or the session errored.
	// Surface whatever the agent produced so far rather than losing
	// the session.
	partial, fetchErr := s.agent.GetSession(ctx, sessionID)
	if fetchErr != nil {
		s.logger.Error("could not fetch partial session state",
			"session_id", sessionID,
			"error", fetchErr,
		)
		return &analysis.Result{
			SessionID:           sessionID,
			Summary:             "Devin is still analyzing this issue. The analysis is taking longer than expected. Check the session for live updates.",
			Confidence:          analysis.HeuristicConfidence(issue),
			Steps:               []string{"View the Devin session link below for real-time analysis progress"},
			Complexity:          "Medium",
			PotentialChallenges: []string{},
			SuccessCriteria:     []string{},
			Status:              "running",
			SessionURL:          devin.SessionURL(sessionID),
		}
	}
	return analysis.Normalize(partial, sessionID, issue)
}

// postAnalysisComment posts a completed analysis back to the issue.
// Failures are logged, never propagated: the analysis itself succeeded.
func (s *Service) postAnalysisComment(ctx context.Context, issueNumber int, result *analysis.Result) {
	if !result.Completed() {
		s.logger.Info("skipping analysis comment, session not completed",
			"issue", issueNumber,
			"status", result.Status,
			"status_enum", result.StatusEnum,
		)
		return
	}
	comment := analysis.FormatComment(result)
	if _, err := s.issues.CreateIssueComment(ctx, issueNumber, comment); err != nil {
		s.logger.Warn("posting analysis comment failed", "issue", issueNumber, "error", err)
		return
	}
	s.logger.Info("posted analysis comment", "issue", issueNumber, "status", result.Status)
}

// ExecuteIssue starts an implementation session for a previously
// analyzed issue. Returns errAnalysisRequired when no analysis is
// cached. Agent failures degrade to a fallback execution result that
// carries the plan as manual steps.
func (s *Service) ExecuteIssue(ctx context.Context, issueNumber int) (*analysis.Execution, error) {
	record := s.cache.Get(issueNumber)
	if record == nil || record.Analysis == nil {
		return nil, errAnalysisRequired
	}
	issue := record.Issue
	plan := record.Analysis

	s.logger.Info("starting issue execution", "issue", issueNumber, "analysis_session", plan.SessionID)

	execution := s.runExecutionSession(ctx, issue, plan)
	s.cache.SetExecution(issueNumber, execution)
	return execution, nil
}

func (s *Service) runExecutionSession(ctx context.Context, issue *github.Issue, plan *analysis.Result) *analysis.Execution {
	if s.agent == nil {
		return analysis.FallbackExecution(issue, plan, errors.New("devin API key not configured"))
	}

	prompt := devin.ExecutionPrompt(issue, s.config.GitHub.Repo, plan.Steps)
	metadata := map[string]any{
		"issue_number":        issue.Number,
		"type":                "execution",
		"analysis_session_id": plan.SessionID,
	}

	sessionID, session, err := s.agent.CreateSession(ctx, prompt, metadata)
	if err != nil {
		s.logger.Error("creating execution session failed", "issue", issue.Number, "error", err)
		return analysis.FallbackExecution(issue, plan, err)
	}

	status := session.Status()
	if status == "" {
		status = "running"
	}
	s.logger.Info("execution session created", "issue", issue.Number, "session_id", sessionID)
	return &analysis.Execution{
		SessionID:  sessionID,
		Status:     status,
		Message:    fmt.Sprintf("Execution started for issue #%d", issue.Number),
		SessionURL: devin.SessionURL(sessionID),
	}
}

// FinalizeStream runs when a streamed session reaches a terminal
// state: re-normalize the finished session, refresh the cached
// analysis, and post the completion comment. Returns the summary
// payload for the stream's completed frame, or nil when the session
// does not belong to a cached analysis.
func (s *Service) FinalizeStream(ctx context.Context, sessionID string, detail *devin.SessionDetail) map[string]any {
	record := s.cache.FindByAnalysisSession(sessionID)
	if record == nil {
		return nil
	}
	issueNumber := record.Issue.Number

	updated := analysis.Normalize(detail.AsSession(), sessionID, record.Issue)
	updated.Status = "completed"
	updated.SessionURL = devin.SessionURL(sessionID)
	s.cache.UpdateAnalysis(issueNumber, updated)
	s.logger.Info("refreshed analysis from finished stream", "issue", issueNumber, "session_id", sessionID)

	if s.issues != nil {
		s.postAnalysisComment(ctx, issueNumber, updated)
	}

	summary := updated.Summary
	if len(summary) > 200 {
		cut := 200
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "..."
	}
	return map[string]any{
		"summary":     summary,
		"confidence":  updated.Confidence,
		"steps_count": len(updated.Steps),
	}
}
