// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the Devin API.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the error body, or the provider's structured error
	// message when one was present.
	Message string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("devin: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsRateLimited reports whether err is a Devin API 429 response.
func IsRateLimited(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == 429
}

// ErrNoSessionID is wrapped by creation errors when the remote
// response carried no recognizable session identifier. There is no
// fallback for this case — without an id there is no session to track.
var ErrNoSessionID = errors.New("devin: API did not return a session ID")
