// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import "strings"

// Session is the raw, weakly-typed payload of a remote session. The
// Devin API has returned several inconsistent shapes over time (direct
// output fields, a nested result object, a messages list), so the
// session is kept as a map and probed through accessors instead of
// being decoded into a fixed struct.
type Session map[string]any

// Status returns the session's free-text status, or "" when absent.
func (s Session) Status() string {
	return s.stringField("status")
}

// StatusEnum returns the finer-grained status_enum field, or "".
func (s Session) StatusEnum() string {
	return s.stringField("status_enum")
}

func (s Session) stringField(name string) string {
	if value, ok := s[name].(string); ok {
		return value
	}
	return ""
}

// Messages returns the session's ordered message entries. Entries that
// are not objects are skipped.
func (s Session) Messages() []map[string]any {
	raw, ok := s["messages"].([]any)
	if !ok {
		return nil
	}
	messages := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if message, ok := entry.(map[string]any); ok {
			messages = append(messages, message)
		}
	}
	return messages
}

// terminalSuccess is the set of status values that end polling as an
// acceptable outcome.
var terminalSuccess = map[string]bool{
	"completed": true,
	"success":   true,
	"done":      true,
	"finished":  true,
}

// terminalFailure is the set of status values that abort polling.
var terminalFailure = map[string]bool{
	"failed":    true,
	"error":     true,
	"cancelled": true,
	"canceled":  true,
}

// TerminalSuccess reports whether the status pair means the session
// reached an acceptable stopping point. status_enum additionally
// accepts "blocked" — the agent waiting on human input is a valid
// place to stop and read its output.
func TerminalSuccess(status, statusEnum string) bool {
	status = strings.ToLower(status)
	statusEnum = strings.ToLower(statusEnum)
	return terminalSuccess[status] || terminalSuccess[statusEnum] || statusEnum == "blocked"
}

// TerminalFailure reports whether the status pair means the session
// failed, was cancelled, or errored.
func TerminalFailure(status, statusEnum string) bool {
	status = strings.ToLower(status)
	statusEnum = strings.ToLower(statusEnum)
	return terminalFailure[status] || terminalFailure[statusEnum]
}

// Terminal reports whether the session has stopped for any reason.
// Unrecognized statuses are non-terminal: the remote side grows new
// states from time to time and polling through them beats failing.
func Terminal(status, statusEnum string) bool {
	return TerminalSuccess(status, statusEnum) || TerminalFailure(status, statusEnum)
}
