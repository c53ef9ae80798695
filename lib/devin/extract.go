// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

// sessionIDExtractor is one strategy for locating the session
// identifier in a creation response. Returns "" when the strategy
// does not apply.
type sessionIDExtractor func(Session) string

// sessionIDExtractors are tried in order; the first non-empty result
// wins. The order is part of the contract: top-level id-like fields
// take precedence over the nested data object.
var sessionIDExtractors = []sessionIDExtractor{
	topLevelField("id"),
	topLevelField("session_id"),
	topLevelField("sessionId"),
	nestedDataID,
}

func topLevelField(name string) sessionIDExtractor {
	return func(session Session) string {
		return session.stringField(name)
	}
}

func nestedDataID(session Session) string {
	data, ok := session["data"].(map[string]any)
	if !ok {
		return ""
	}
	if id, ok := data["id"].(string); ok {
		return id
	}
	return ""
}

// extractSessionID probes a creation response for the session
// identifier. Returns "" when no strategy matched.
func extractSessionID(session Session) string {
	for _, extract := range sessionIDExtractors {
		if id := extract(session); id != "" {
			return id
		}
	}
	return ""
}
