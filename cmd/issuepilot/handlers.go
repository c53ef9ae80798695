// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/issuepilot/issuepilot/lib/analysis"
	"github.com/issuepilot/issuepilot/lib/github"
	"github.com/issuepilot/issuepilot/lib/version"
)

// issueWithResults is an issue enriched with whatever cached analysis
// and execution exist for it.
type issueWithResults struct {
	*github.Issue
	Analysis  *analysis.Result    `json:"analysis,omitempty"`
	Execution *analysis.Execution `json:"execution,omitempty"`
}

// historyEntry is one issue's worth of past work.
type historyEntry struct {
	IssueNumber int                 `json:"issue_number"`
	IssueTitle  string              `json:"issue_title"`
	Analysis    *analysis.Result    `json:"analysis"`
	Execution   *analysis.Execution `json:"execution,omitempty"`
}

// routes builds the HTTP API. Method and path matching is delegated
// to the ServeMux patterns; handlers only parse parameters and shape
// responses.
func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/issues", s.handleListIssues)
	mux.HandleFunc("GET /api/issues/{number}", s.handleGetIssue)
	mux.HandleFunc("POST /api/analyze/{number}", s.handleAnalyze)
	mux.HandleFunc("POST /api/execute/{number}", s.handleExecute)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionStatus)
	mux.HandleFunc("GET /api/sessions/{id}/stream", s.handleSessionStream)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	return corsMiddleware(s.config.FrontendOrigins, mux)
}

func (s *Service) handleRoot(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]any{
		"message": "Issuepilot API",
		"status":  "running",
		"version": version.Short(),
	})
}

func (s *Service) handleHealth(writer http.ResponseWriter, request *http.Request) {
	configuration := map[string]bool{
		"github_token":  s.config.GitHub.Token != "",
		"github_repo":   s.config.GitHub.Repo != "",
		"devin_api_key": s.config.Devin.APIKey != "",
	}
	status := "healthy"
	var repo any
	if s.config.Complete() {
		repo = s.config.GitHub.Repo
	} else {
		status = "misconfigured"
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"status":        status,
		"configuration": configuration,
		"repo":          repo,
	})
}

func (s *Service) handleListIssues(writer http.ResponseWriter, request *http.Request) {
	if s.issues == nil {
		writeError(writer, http.StatusServiceUnavailable, "github client not configured")
		return
	}
	state := request.URL.Query().Get("state")
	if state == "" {
		state = "open"
	}

	issues, err := s.issues.ListIssues(request.Context(), github.ListIssuesOptions{State: state})
	if err != nil {
		s.logger.Error("listing issues failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}

	enriched := make([]issueWithResults, len(issues))
	for i := range issues {
		enriched[i] = s.enrich(&issues[i])
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(enriched),
		"issues":  enriched,
	})
}

func (s *Service) handleGetIssue(writer http.ResponseWriter, request *http.Request) {
	if s.issues == nil {
		writeError(writer, http.StatusServiceUnavailable, "github client not configured")
		return
	}
	number, ok := pathNumber(writer, request)
	if !ok {
		return
	}

	issue, err := s.issues.GetIssue(request.Context(), number)
	if err != nil {
		s.logger.Error("fetching issue failed", "issue", number, "error", err)
		writeError(writer, issueErrorStatus(err), err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success": true,
		"issue":   s.enrich(issue),
	})
}

func (s *Service) handleAnalyze(writer http.ResponseWriter, request *http.Request) {
	number, ok := pathNumber(writer, request)
	if !ok {
		return
	}
	options := AnalyzeOptions{
		PostComment: queryBool(request, "post_comment", true),
		Unified:     queryBool(request, "unified", false),
	}

	result, err := s.AnalyzeIssue(request.Context(), number, options)
	if err != nil {
		writeError(writer, issueErrorStatus(err), err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success":      true,
		"issue_number": number,
		"analysis":     result,
	})
}

func (s *Service) handleExecute(writer http.ResponseWriter, request *http.Request) {
	number, ok := pathNumber(writer, request)
	if !ok {
		return
	}

	execution, err := s.ExecuteIssue(request.Context(), number)
	if err != nil {
		if errors.Is(err, errAnalysisRequired) {
			writeError(writer, http.StatusBadRequest, err.Error())
			return
		}
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success":      true,
		"issue_number": number,
		"execution":    execution,
	})
}

func (s *Service) handleSessionStatus(writer http.ResponseWriter, request *http.Request) {
	if s.agent == nil {
		writeError(writer, http.StatusServiceUnavailable, "devin client not configured")
		return
	}
	sessionID := request.PathValue("id")

	session, err := s.agent.GetSession(request.Context(), sessionID)
	if err != nil {
		s.logger.Error("fetching session failed", "session_id", sessionID, "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success": true,
		"session": session,
	})
}

func (s *Service) handleHistory(writer http.ResponseWriter, request *http.Request) {
	records := s.cache.History()
	history := make([]historyEntry, 0, len(records))
	for _, record := range records {
		history = append(history, historyEntry{
			IssueNumber: record.Issue.Number,
			IssueTitle:  record.Issue.Title,
			Analysis:    record.Analysis,
			Execution:   record.Execution,
		})
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(history),
		"history": history,
	})
}

func (s *Service) enrich(issue *github.Issue) issueWithResults {
	result := issueWithResults{Issue: issue}
	if record := s.cache.Get(issue.Number); record != nil {
		result.Analysis = record.Analysis
		result.Execution = record.Execution
	}
	return result
}

// pathNumber parses the {number} path segment, writing a 400 on
// failure.
func pathNumber(writer http.ResponseWriter, request *http.Request) (int, bool) {
	number, err := strconv.Atoi(request.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(writer, http.StatusBadRequest, "invalid issue number")
		return 0, false
	}
	return number, true
}

// queryBool parses a boolean query parameter, treating anything but
// an explicit false value as the default.
func queryBool(request *http.Request, name string, defaultValue bool) bool {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// issueErrorStatus maps a GitHub client error to a response status:
// missing issues are the client's mistake, everything else is a
// gateway problem.
func issueErrorStatus(err error) int {
	if github.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(payload)
}

// writeError writes a JSON error body in the {"detail": ...} shape the
// frontend expects.
func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"detail": message})
}
