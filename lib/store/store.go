// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package store keeps per-issue analysis and execution results in
// memory. The cache exists so that execution can reuse an earlier
// analysis and so the history endpoint can list past work; nothing is
// persisted across restarts.
package store

import (
	"sort"
	"sync"

	"github.com/issuepilot/issuepilot/lib/analysis"
	"github.com/issuepilot/issuepilot/lib/github"
)

// Record is everything cached for a single issue. Analysis is set
// first; Execution only ever appears on a record that already has an
// analysis.
type Record struct {
	Issue     *github.Issue       `json:"issue"`
	Analysis  *analysis.Result    `json:"analysis"`
	Execution *analysis.Execution `json:"execution,omitempty"`
}

// Store is a mutex-guarded in-memory cache keyed by issue number.
// Safe for concurrent use. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	records map[int]*Record
}

func New() *Store {
	return &Store{records: make(map[int]*Record)}
}

// SetAnalysis caches an analysis for an issue, replacing any earlier
// record including its execution: a fresh analysis invalidates the
// execution derived from the old one.
func (store *Store) SetAnalysis(issue *github.Issue, result *analysis.Result) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.records[issue.Number] = &Record{Issue: issue, Analysis: result}
}

// SetExecution attaches an execution result to an issue's record.
// Returns false when the issue has no cached analysis to attach to.
func (store *Store) SetExecution(issueNumber int, execution *analysis.Execution) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[issueNumber]
	if !ok {
		return false
	}
	record.Execution = execution
	return true
}

// Get returns the cached record for an issue, or nil.
func (store *Store) Get(issueNumber int) *Record {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.records[issueNumber]
}

// UpdateAnalysis replaces the analysis on an existing record without
// touching its execution, used when a streaming relay re-normalizes a
// finished session. Returns false when the issue is not cached.
func (store *Store) UpdateAnalysis(issueNumber int, result *analysis.Result) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[issueNumber]
	if !ok {
		return false
	}
	record.Analysis = result
	return true
}

// FindByAnalysisSession returns the record whose analysis came from
// the given session, or nil. Fallback session IDs are shared between
// issues and therefore never matched.
func (store *Store) FindByAnalysisSession(sessionID string) *Record {
	if sessionID == "" || sessionID == analysis.FallbackSessionID {
		return nil
	}
	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, record := range store.records {
		if record.Analysis != nil && record.Analysis.SessionID == sessionID {
			return record
		}
	}
	return nil
}

// History returns all cached records ordered by issue number.
func (store *Store) History() []*Record {
	store.mu.RLock()
	defer store.mu.RUnlock()
	records := make([]*Record, 0, len(store.records))
	for _, record := range store.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Issue.Number < records[j].Issue.Number
	})
	return records
}

// Len reports the number of cached records.
func (store *Store) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.records)
}
