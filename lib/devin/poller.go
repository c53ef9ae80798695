// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultPollInterval is the delay between session status fetches.
const DefaultPollInterval = 5 * time.Second

// DefaultMaxWait is the cumulative polling budget for a synchronous
// analysis request.
const DefaultMaxWait = 300 * time.Second

// knownNonTerminal lists status values we recognize as "still
// working". Anything outside this set and the terminal sets is logged
// and polled through — the remote side invents states faster than we
// can enumerate them.
var knownNonTerminal = map[string]bool{
	"running":     true,
	"pending":     true,
	"in_progress": true,
	"processing":  true,
	"claimed":     true,
	"working":     true,
}

// WaitForResult polls a session until it reaches a terminal status or
// the wall-clock budget is exhausted. Fetches happen every interval;
// the first fetch is immediate.
//
// Terminal-success returns the fetched payload. Terminal-failure
// returns the payload together with an error carrying the failing
// status. Budget exhaustion returns the last fetched payload with a
// nil error — the caller treats it as best-effort partial state, never
// blocking indefinitely.
func (client *Client) WaitForResult(ctx context.Context, sessionID string, maxWait, interval time.Duration) (Session, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	var last Session
	pollCount := 0
	elapsed := time.Duration(0)

	for {
		pollCount++
		session, err := client.GetSession(ctx, sessionID)
		if err != nil {
			return last, err
		}
		last = session

		status := session.Status()
		statusEnum := session.StatusEnum()
		client.logger.Info("polled session",
			"session_id", sessionID,
			"poll", pollCount,
			"status", status,
			"status_enum", statusEnum,
			"elapsed", elapsed,
		)

		if TerminalSuccess(status, statusEnum) {
			client.logger.Info("session reached terminal status",
				"session_id", sessionID,
				"status", status,
				"status_enum", statusEnum,
				"elapsed", elapsed,
			)
			return session, nil
		}
		if TerminalFailure(status, statusEnum) {
			return session, fmt.Errorf("devin: session %s failed with status %q", sessionID, status)
		}
		if !knownNonTerminal[strings.ToLower(status)] && !knownNonTerminal[strings.ToLower(statusEnum)] {
			client.logger.Warn("unrecognized session status, continuing to poll",
				"session_id", sessionID,
				"status", status,
				"status_enum", statusEnum,
			)
		}

		elapsed += interval
		if elapsed >= maxWait {
			break
		}

		select {
		case <-client.clock.After(interval):
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}

	client.logger.Warn("session polling budget exhausted, returning partial state",
		"session_id", sessionID,
		"max_wait", maxWait,
		"status", last.Status(),
	)
	return last, nil
}
