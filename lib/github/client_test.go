// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient creates a Client backed by the given httptest.Server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		Repo:       "octo/widgets",
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(Config{Repo: "octo/widgets"})
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNewClient_RejectsMalformedRepo(t *testing.T) {
	_, err := NewClient(Config{Token: "t", Repo: "widgets"})
	if err == nil {
		t.Fatal("expected error for repo without owner")
	}
}

func TestClient_Headers(t *testing.T) {
	var auth, accept, version string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		auth = request.Header.Get("Authorization")
		accept = request.Header.Get("Accept")
		version = request.Header.Get("X-GitHub-Api-Version")
		writer.Write([]byte(`{"number":1,"title":"Test"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.GetIssue(context.Background(), 1); err != nil {
		t.Fatalf("GetIssue: %v", err)
	}

	if auth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer test-token")
	}
	if accept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", accept)
	}
	if version != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", version)
	}
}

func TestListIssues_FiltersPullRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if got := request.URL.Query().Get("state"); got != "open" {
			t.Errorf("state = %q, want open", got)
		}
		writer.Write([]byte(`[
			{"number":1,"title":"Real issue"},
			{"number":2,"title":"A PR","pull_request":{"url":"https://api.github.com/repos/octo/widgets/pulls/2"}},
			{"number":3,"title":"Another issue"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	issues, err := client.ListIssues(context.Background(), ListIssuesOptions{})
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}

	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2 (pull request filtered)", len(issues))
	}
	if issues[0].Number != 1 || issues[1].Number != 3 {
		t.Errorf("issue numbers = %d, %d, want 1, 3", issues[0].Number, issues[1].Number)
	}
}

func TestCreateIssueComment(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path = request.URL.Path
		buf := make([]byte, request.ContentLength)
		request.Body.Read(buf)
		body = string(buf)
		writer.WriteHeader(http.StatusCreated)
		writer.Write([]byte(`{"id":42,"body":"hello"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	comment, err := client.CreateIssueComment(context.Background(), 7, "hello")
	if err != nil {
		t.Fatalf("CreateIssueComment: %v", err)
	}

	if path != "/repos/octo/widgets/issues/7/comments" {
		t.Errorf("path = %q", path)
	}
	if body != `{"body":"hello"}` {
		t.Errorf("request body = %q", body)
	}
	if comment.ID != 42 {
		t.Errorf("comment ID = %d, want 42", comment.ID)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		writer.Write([]byte(`{"message":"API rate limit exceeded for installation"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetIssue(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Errorf("IsRateLimited(%v) = false, want true", err)
	}
	if IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = true, want false", err)
	}
}

func TestIssueHelpers(t *testing.T) {
	issue := Issue{
		Number: 1,
		Labels: []Label{{Name: "bug"}, {Name: "backend"}},
	}
	if issue.IsPullRequest() {
		t.Error("issue without pull_request reported as PR")
	}
	names := issue.LabelNames()
	if len(names) != 2 || names[0] != "bug" || names[1] != "backend" {
		t.Errorf("LabelNames = %v", names)
	}
}
