// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/issuepilot/issuepilot/lib/clock"
)

func newTestClient(t *testing.T, server *httptest.Server, clk clock.Clock) *Client {
	t.Helper()
	if clk == nil {
		clk = clock.Real()
	}
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		HTTPClient: server.Client(),
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestCreateSession_BearerAuth(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		auth = request.Header.Get("Authorization")
		writer.Write([]byte(`{"id":"devin-abc","status":"running"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	sessionID, session, err := client.CreateSession(context.Background(), "do things", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if sessionID != "devin-abc" {
		t.Errorf("sessionID = %q, want devin-abc", sessionID)
	}
	if session.Status() != "running" {
		t.Errorf("status = %q, want running", session.Status())
	}
}

func TestCreateSession_MissingIDIsHardError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"status":"running"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	_, _, err := client.CreateSession(context.Background(), "do things", nil)
	if !errors.Is(err, ErrNoSessionID) {
		t.Fatalf("err = %v, want ErrNoSessionID", err)
	}
}

func TestCreateSession_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTooManyRequests)
		writer.Write([]byte(`{"message":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	_, _, err := client.CreateSession(context.Background(), "do things", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRateLimited(err) {
		t.Errorf("IsRateLimited(%v) = false, want true", err)
	}
}

func TestGetSessionDetail_RequestsMessageFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		if query.Get("include_messages") != "true" || query.Get("include_thinking") != "true" {
			t.Errorf("query = %q, want include_messages and include_thinking", request.URL.RawQuery)
		}
		writer.Write([]byte(`{"status":"running","messages":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	detail, err := client.GetSessionDetail(context.Background(), "devin-abc")
	if err != nil {
		t.Fatalf("GetSessionDetail: %v", err)
	}
	if detail.Status != "running" {
		t.Errorf("status = %q, want running", detail.Status)
	}
}

func TestSessionURL_StripsIDPrefix(t *testing.T) {
	if got := SessionURL("devin-abc123"); got != "https://app.devin.ai/sessions/abc123" {
		t.Errorf("SessionURL = %q", got)
	}
	if got := SessionURL("abc123"); got != "https://app.devin.ai/sessions/abc123" {
		t.Errorf("SessionURL = %q", got)
	}
}

// waitForResult runs WaitForResult in a goroutine and returns the
// outcome on a channel so the test can drive the fake clock.
type pollOutcome struct {
	session Session
	err     error
}

func runWaitForResult(client *Client, sessionID string, maxWait, interval time.Duration) <-chan pollOutcome {
	done := make(chan pollOutcome, 1)
	go func() {
		session, err := client.WaitForResult(context.Background(), sessionID, maxWait, interval)
		done <- pollOutcome{session, err}
	}()
	return done
}
