// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability. Production
// code injects Real(); tests inject Fake() and advance time explicitly.
//
// Every component that sleeps between polls (the session poller, the
// streaming relay) takes a Clock instead of calling the time package
// directly, so its timing behavior is deterministic under test.
package clock

import "time"

// Clock provides the time operations used by polling loops.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. If d <= 0, the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}
