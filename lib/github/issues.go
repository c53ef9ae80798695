// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListIssuesOptions controls filtering for ListIssues.
type ListIssuesOptions struct {
	State   string // "open", "closed", "all" (default: "open")
	PerPage int    // results per page (max 100, default 30)
}

// ListIssues fetches issues from the bound repository, newest first.
// Pull requests — which GitHub includes in the issues endpoint — are
// filtered out.
func (client *Client) ListIssues(ctx context.Context, options ListIssuesOptions) ([]Issue, error) {
	state := options.State
	if state == "" {
		state = "open"
	}
	perPage := options.PerPage
	if perPage <= 0 {
		perPage = 30
	}

	query := url.Values{}
	query.Set("state", state)
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("sort", "created")
	query.Set("direction", "desc")

	path := fmt.Sprintf("/repos/%s/%s/issues?%s", client.owner, client.repo, query.Encode())

	var fetched []Issue
	if err := client.do(ctx, http.MethodGet, path, nil, &fetched); err != nil {
		return nil, fmt.Errorf("listing issues in %s: %w", client.Repo(), err)
	}

	issues := make([]Issue, 0, len(fetched))
	for _, issue := range fetched {
		if issue.IsPullRequest() {
			continue
		}
		issues = append(issues, issue)
	}

	client.logger.Info("fetched issues",
		"repo", client.Repo(),
		"state", state,
		"count", len(issues),
	)
	return issues, nil
}

// GetIssue retrieves a single issue by number.
func (client *Client) GetIssue(ctx context.Context, number int) (*Issue, error) {
	var issue Issue
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", client.owner, client.repo, number)
	if err := client.do(ctx, http.MethodGet, path, nil, &issue); err != nil {
		return nil, fmt.Errorf("getting issue %s#%d: %w", client.Repo(), number, err)
	}
	return &issue, nil
}

// CreateIssueComment posts a comment on an issue.
func (client *Client) CreateIssueComment(ctx context.Context, number int, body string) (*Comment, error) {
	var comment Comment
	request := struct {
		Body string `json:"body"`
	}{Body: body}
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", client.owner, client.repo, number)
	if err := client.do(ctx, http.MethodPost, path, request, &comment); err != nil {
		return nil, fmt.Errorf("creating comment on %s#%d: %w", client.Repo(), number, err)
	}
	client.logger.Info("posted issue comment", "repo", client.Repo(), "issue", number)
	return &comment, nil
}
