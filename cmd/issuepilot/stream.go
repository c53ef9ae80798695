// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/issuepilot/issuepilot/lib/relay"
)

// handleSessionStream relays a session's progress as server-sent
// events until the session reaches a terminal state or the client
// disconnects.
func (s *Service) handleSessionStream(writer http.ResponseWriter, request *http.Request) {
	if s.agent == nil {
		writeError(writer, http.StatusServiceUnavailable, "devin client not configured")
		return
	}
	flusher, ok := writer.(http.Flusher)
	if !ok {
		writeError(writer, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sessionID := request.PathValue("id")

	sessionRelay, err := relay.New(relay.Config{
		Fetch:    s.agent.GetSessionDetail,
		Finalize: s.FinalizeStream,
		Clock:    s.clock,
		Logger:   s.logger,
	})
	if err != nil {
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}

	header := writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(event relay.Event) error {
		frame, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encoding stream event: %w", err)
		}
		if _, err := fmt.Fprintf(writer, "data: %s\n\n", frame); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := sessionRelay.Run(request.Context(), sessionID, emit); err != nil {
		// The stream is already committed as 200; nothing to send.
		s.logger.Info("session stream ended", "session_id", sessionID, "reason", err)
	}
}
