// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"strings"

	"github.com/issuepilot/issuepilot/lib/devin"
)

// responseFields are the field names the agent has been observed to
// put its free-form response under, in precedence order.
var responseFields = []string{
	"output", "response", "message", "text", "content",
	"body", "data", "answer", "completion",
}

// textExtractor is one strategy for locating the agent's response
// text in a session payload. Returns "" when it finds nothing.
type textExtractor func(devin.Session) string

// textExtractors are tried in order with early exit: direct fields on
// the session, the same fields on the nested result object, the same
// on a nested data object, agent-authored message entries, and finally
// the message entries of a nested raw debug copy.
var textExtractors = []textExtractor{
	directFieldText,
	nestedObjectText("result"),
	nestedObjectText("data"),
	agentMessagesText,
	rawDataMessagesText,
}

// ExtractResponseText probes a session payload for the agent's
// response text. The first non-empty strategy result wins.
func ExtractResponseText(session devin.Session) string {
	for _, extract := range textExtractors {
		if text := extract(session); text != "" {
			return text
		}
	}
	return ""
}

func directFieldText(session devin.Session) string {
	return probeFields(map[string]any(session))
}

func nestedObjectText(key string) textExtractor {
	return func(session devin.Session) string {
		nested, ok := session[key].(map[string]any)
		if !ok {
			return ""
		}
		return probeFields(nested)
	}
}

// probeFields returns the first non-empty string under a known
// response field name. Non-string values are skipped — a nested
// object under "data" is handled by its own extractor.
func probeFields(object map[string]any) string {
	for _, field := range responseFields {
		if text, ok := object[field].(string); ok && text != "" {
			return text
		}
	}
	return ""
}

// agentMessagesText joins the agent-authored entries of the session's
// message list with blank lines. Later messages often supersede
// earlier partial ones, so all of them are kept in order rather than
// picking one. User-authored entries are skipped.
func agentMessagesText(session devin.Session) string {
	return joinAgentMessages(session.Messages())
}

// rawDataMessagesText repeats the message probe against the nested
// raw/debug copy of the session, which the streaming path stores under
// raw_data.
func rawDataMessagesText(session devin.Session) string {
	raw, ok := session["raw_data"].(map[string]any)
	if !ok {
		return ""
	}
	return joinAgentMessages(devin.Session(raw).Messages())
}

func joinAgentMessages(messages []map[string]any) string {
	var parts []string
	for _, message := range messages {
		if content := agentMessageContent(message); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// agentMessageContent returns an entry's text when the entry is
// agent-authored, covering both the raw API shape (type
// devin_message, text under "message") and the formatted streaming
// shape (type devin_response or an assistant role, text under
// "content").
func agentMessageContent(message map[string]any) string {
	entryType, _ := message["type"].(string)
	role, _ := message["role"].(string)

	switch {
	case entryType == "devin_message":
		content, _ := message["message"].(string)
		return content
	case entryType == "devin_response",
		role == "assistant" && entryType != "user_request":
		content, _ := message["content"].(string)
		return content
	}
	return ""
}
