// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import (
	"context"
	"strings"
)

// DetailMessage is a substantive entry in a session's message feed.
type DetailMessage struct {
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp,omitempty"`
	Type      string `json:"type"`
}

// ThinkingStep is a short in-progress narration fragment from the
// agent, distinguished from substantive output for display pacing.
type ThinkingStep struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SessionDetail is a session's status plus its message feed split into
// messages and thinking steps.
type SessionDetail struct {
	SessionID     string          `json:"session_id"`
	Status        string          `json:"status"`
	StatusEnum    string          `json:"status_enum"`
	Messages      []DetailMessage `json:"messages"`
	ThinkingSteps []ThinkingStep  `json:"thinking_steps"`
	Progress      map[string]any  `json:"progress,omitempty"`
	LastUpdated   string          `json:"last_updated,omitempty"`

	// Raw is the unmodified session payload, kept so a final
	// normalization pass can probe fields the split discarded.
	Raw Session `json:"-"`
}

// thinkingKeywords mark a short agent message as in-progress narration
// rather than output. Tuned by example, not a contract.
var thinkingKeywords = []string{
	"analyzing", "examining", "looking", "checking", "investigating",
}

// analysisBlockMarkers suggest a message is a combined structured
// analysis rather than plain narration.
var analysisBlockMarkers = []string{
	"summary", "confidence", "implementation", "phase", "step",
}

// GetSessionDetail fetches a session with its message feed included
// and classifies entries into messages and thinking steps.
func (client *Client) GetSessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	session, err := client.getSessionRaw(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return formatSessionDetail(sessionID, session), nil
}

// formatSessionDetail splits a raw session's message list into
// thinking steps and substantive messages.
func formatSessionDetail(sessionID string, session Session) *SessionDetail {
	detail := &SessionDetail{
		SessionID:     sessionID,
		Status:        session.Status(),
		StatusEnum:    session.StatusEnum(),
		Messages:      []DetailMessage{},
		ThinkingSteps: []ThinkingStep{},
		Raw:           session,
	}
	if detail.Status == "" {
		detail.Status = "unknown"
	}
	if progress, ok := session["progress"].(map[string]any); ok {
		detail.Progress = progress
	}
	detail.LastUpdated = session.stringField("updated_at")
	if detail.LastUpdated == "" {
		detail.LastUpdated = session.stringField("last_updated")
	}

	for _, entry := range session.Messages() {
		entryType, _ := entry["type"].(string)
		content, _ := entry["message"].(string)
		timestamp, _ := entry["timestamp"].(string)

		switch entryType {
		case "devin_message":
			if content == "" {
				continue
			}
			classifyAgentMessage(detail, content, timestamp)
		case "initial_user_message":
			if content == "" {
				continue
			}
			detail.Messages = append(detail.Messages, DetailMessage{
				Content:   content,
				Role:      "user",
				Timestamp: timestamp,
				Type:      "user_request",
			})
		}
	}

	promoteShortMessages(detail)
	return detail
}

// classifyAgentMessage routes one agent-authored entry. Short messages
// with progress keywords are thinking steps. A long combined analysis
// block is split on blank lines, with short fragments treated as
// thinking and longer ones as message content.
func classifyAgentMessage(detail *SessionDetail, content, timestamp string) {
	lower := strings.ToLower(content)

	if len(content) < 200 && containsAny(lower, thinkingKeywords) {
		detail.ThinkingSteps = append(detail.ThinkingSteps, ThinkingStep{
			Content:   content,
			Timestamp: timestamp,
		})
		return
	}

	if looksLikeAnalysisBlock(content, lower) {
		for _, fragment := range strings.Split(content, "\n\n") {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			if len(fragment) < 200 {
				detail.ThinkingSteps = append(detail.ThinkingSteps, ThinkingStep{
					Content:   fragment,
					Timestamp: timestamp,
				})
			} else {
				detail.Messages = append(detail.Messages, DetailMessage{
					Content:   fragment,
					Role:      "assistant",
					Timestamp: timestamp,
					Type:      "devin_response",
				})
			}
		}
		return
	}

	detail.Messages = append(detail.Messages, DetailMessage{
		Content:   content,
		Role:      "assistant",
		Timestamp: timestamp,
		Type:      "devin_response",
	})
}

// looksLikeAnalysisBlock reports whether an agent message reads as a
// combined structured analysis: long, multi-paragraph, and mentioning
// analysis vocabulary.
func looksLikeAnalysisBlock(content, lower string) bool {
	return len(content) > 600 &&
		strings.Count(content, "\n\n") >= 2 &&
		containsAny(lower, analysisBlockMarkers)
}

// promoteShortMessages is the second classification pass: when no
// thinking steps were identified but the agent sent several messages,
// the shorter non-final ones are reclassified as thinking so the final
// response stands alone.
func promoteShortMessages(detail *SessionDetail) {
	if len(detail.ThinkingSteps) > 0 || len(detail.Messages) <= 1 {
		return
	}

	kept := make([]DetailMessage, 0, len(detail.Messages))
	last := len(detail.Messages) - 1
	for i, message := range detail.Messages {
		if message.Role == "assistant" && len(message.Content) < 300 && i != last {
			detail.ThinkingSteps = append(detail.ThinkingSteps, ThinkingStep{
				Content:   message.Content,
				Timestamp: message.Timestamp,
			})
			continue
		}
		kept = append(kept, message)
	}
	detail.Messages = kept
}

// AsSession rebuilds a weakly-typed session payload from the detail,
// with the formatted message split at the top level and the unmodified
// payload under raw_data. This is the shape the normalizer probes
// during a relay's final pass.
func (detail *SessionDetail) AsSession() Session {
	messages := make([]any, 0, len(detail.Messages))
	for _, message := range detail.Messages {
		messages = append(messages, map[string]any{
			"type":      message.Type,
			"content":   message.Content,
			"role":      message.Role,
			"timestamp": message.Timestamp,
		})
	}

	session := Session{
		"session_id":  detail.SessionID,
		"status":      detail.Status,
		"status_enum": detail.StatusEnum,
		"messages":    messages,
	}
	if detail.Raw != nil {
		session["raw_data"] = map[string]any(detail.Raw)
	}
	return session
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
