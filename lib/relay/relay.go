// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay turns a remote session's polled state into an ordered
// event stream suitable for server-sent events. It repeatedly fetches
// session detail, diffs the message feed against what it has already
// emitted, and paces new entries out with short delays so a client
// renders them progressively instead of in bursts.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/issuepilot/issuepilot/lib/clock"
	"github.com/issuepilot/issuepilot/lib/devin"
)

// Default pacing. PollInterval is shorter than the analysis poller's
// because a streaming client is watching.
const (
	DefaultPollInterval  = time.Second
	DefaultMessageDelay  = 300 * time.Millisecond
	DefaultThinkingDelay = 500 * time.Millisecond
	DefaultErrorBackoff  = 5 * time.Second
)

// Event is one frame of the stream. Data's shape depends on Type:
// "message" and "thinking" carry feed entries, "status" carries
// counters, "completed" carries the final summary, "error" and
// "fatal_error" carry the failure text.
type Event struct {
	Type      string  `json:"type"`
	Data      any     `json:"data"`
	Timestamp float64 `json:"timestamp"`
}

// EmitFunc delivers one event to the client. A non-nil error stops the
// relay; the usual cause is the client disconnecting.
type EmitFunc func(Event) error

// Config assembles a Relay.
type Config struct {
	// Fetch retrieves current session detail. Required.
	Fetch func(ctx context.Context, sessionID string) (*devin.SessionDetail, error)

	// Finalize runs once when the session reaches a terminal state,
	// before the completed event. Its non-nil return is attached to
	// the completed frame as updated_analysis. Optional.
	Finalize func(ctx context.Context, sessionID string, detail *devin.SessionDetail) map[string]any

	Clock  clock.Clock
	Logger *slog.Logger

	// Zero durations take the package defaults.
	PollInterval  time.Duration
	MessageDelay  time.Duration
	ThinkingDelay time.Duration
	ErrorBackoff  time.Duration
}

// Relay streams one session at a time; a single Relay may serve many
// concurrent Run calls.
type Relay struct {
	config Config
}

func New(config Config) (*Relay, error) {
	if config.Fetch == nil {
		return nil, fmt.Errorf("relay: Fetch is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.MessageDelay == 0 {
		config.MessageDelay = DefaultMessageDelay
	}
	if config.ThinkingDelay == 0 {
		config.ThinkingDelay = DefaultThinkingDelay
	}
	if config.ErrorBackoff == 0 {
		config.ErrorBackoff = DefaultErrorBackoff
	}
	return &Relay{config: config}, nil
}

// Run polls the session and emits events until the session reaches a
// terminal state, the context is cancelled, or emit fails. Fetch
// errors are reported as error frames and retried after a backoff; a
// panic anywhere in the loop becomes a final fatal_error frame.
func (relay *Relay) Run(ctx context.Context, sessionID string, emit EmitFunc) (err error) {
	logger := relay.config.Logger.With("session_id", sessionID)
	logger.Info("starting session stream")

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("session stream panicked", "panic", recovered)
			// Best effort: the client may already be gone.
			emit(relay.event("fatal_error", map[string]any{
				"error":      fmt.Sprint(recovered),
				"session_id": sessionID,
			}))
			err = fmt.Errorf("relay: session %s stream panicked: %v", sessionID, recovered)
		}
	}()

	sentMessages := 0
	sentThinking := 0
	for {
		detail, fetchErr := relay.config.Fetch(ctx, sessionID)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("session fetch failed", "error", fetchErr)
			if emitErr := emit(relay.event("error", map[string]any{
				"error":      fetchErr.Error(),
				"session_id": sessionID,
			})); emitErr != nil {
				return emitErr
			}
			if sleepErr := relay.sleep(ctx, relay.config.ErrorBackoff); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		completed := devin.Terminal(detail.Status, detail.StatusEnum)

		if len(detail.Messages) > sentMessages {
			for _, message := range detail.Messages[sentMessages:] {
				if emitErr := emit(relay.event("message", message)); emitErr != nil {
					return emitErr
				}
				if sleepErr := relay.sleep(ctx, relay.config.MessageDelay); sleepErr != nil {
					return sleepErr
				}
			}
			sentMessages = len(detail.Messages)
		}

		if len(detail.ThinkingSteps) > sentThinking {
			for _, step := range detail.ThinkingSteps[sentThinking:] {
				if emitErr := emit(relay.event("thinking", step)); emitErr != nil {
					return emitErr
				}
				if sleepErr := relay.sleep(ctx, relay.config.ThinkingDelay); sleepErr != nil {
					return sleepErr
				}
			}
			sentThinking = len(detail.ThinkingSteps)
		}

		if emitErr := emit(relay.event("status", map[string]any{
			"status":         detail.Status,
			"status_enum":    detail.StatusEnum,
			"message_count":  len(detail.Messages),
			"thinking_count": len(detail.ThinkingSteps),
			"completed":      completed,
		})); emitErr != nil {
			return emitErr
		}

		if completed {
			data := map[string]any{
				"session_id":           sessionID,
				"final_status":         detail.Status,
				"final_status_enum":    detail.StatusEnum,
				"total_messages":       len(detail.Messages),
				"total_thinking_steps": len(detail.ThinkingSteps),
			}
			if relay.config.Finalize != nil {
				if updated := relay.config.Finalize(ctx, sessionID, detail); updated != nil {
					data["updated_analysis"] = updated
				}
			}
			if emitErr := emit(relay.event("completed", data)); emitErr != nil {
				return emitErr
			}
			logger.Info("session stream completed", "final_status", detail.Status)
			return nil
		}

		if sleepErr := relay.sleep(ctx, relay.config.PollInterval); sleepErr != nil {
			return sleepErr
		}
	}
}

func (relay *Relay) event(eventType string, data any) Event {
	now := relay.config.Clock.Now()
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	}
}

func (relay *Relay) sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-relay.config.Clock.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
