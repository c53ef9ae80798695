// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package devin is a client for the Devin AI-agent API: creating
// analysis and execution sessions from a GitHub issue, polling a
// session to a terminal status under a wall-clock budget, and fetching
// a session's detailed message feed.
//
// Session payloads are remote-owned and schema-unstable, so the
// package models them as [Session], a weakly-typed map with accessor
// helpers, rather than a fixed struct. The only field the client
// insists on is the session identifier at creation time — a creation
// response without one is a hard error, since there is nothing to
// track. Everything downstream tolerates missing fields.
package devin
