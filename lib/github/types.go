// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "time"

// User is a GitHub user reference, as it appears on issue authors.
type User struct {
	Login   string `json:"login"`
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url,omitempty"`
}

// Label is a GitHub issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PullRequestLink marks an issue as a pull request. GitHub's issues
// endpoints include pull requests; the presence of this object is the
// only reliable discriminator.
type PullRequestLink struct {
	URL string `json:"url,omitempty"`
}

// Issue is a GitHub issue.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state,omitempty"` // "open" or "closed"
	HTMLURL   string    `json:"html_url,omitempty"`
	User      User      `json:"user,omitempty"`
	Labels    []Label   `json:"labels,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	// PullRequest is non-nil when this "issue" is actually a pull
	// request. Listings filter these out.
	PullRequest *PullRequestLink `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether the issue is really a pull request.
func (issue *Issue) IsPullRequest() bool {
	return issue.PullRequest != nil
}

// LabelNames returns the ordered label names of the issue.
func (issue *Issue) LabelNames() []string {
	names := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		names = append(names, label.Name)
	}
	return names
}

// Comment is a GitHub issue comment.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url,omitempty"`
	User      User      `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
