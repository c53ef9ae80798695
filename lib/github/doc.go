// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package github is a typed client for the slice of the GitHub REST
// API that issuepilot consumes: listing and fetching issues and
// posting analysis comments.
//
// Authentication is token-based. Non-2xx responses surface as
// [*APIError]; [IsRateLimited] and [IsNotFound] classify them for
// callers. The client never retries — rate limits are reported to the
// caller, which degrades to a fallback result instead of queueing.
package github
