// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

// Package analysis turns whatever a Devin session returns into a
// fixed result shape. The remote agent's responses are schema-unstable
// — raw JSON fields, nested result objects, free-text messages,
// markdown-structured text — so [Normalize] runs an ordered pipeline
// of extractors (JSON-first, then headings, then keyword patterns,
// then positional slices) where the first non-empty value wins per
// field, and fills anything still missing with deterministic
// defaults. It never fails: every input, including an empty session,
// produces a fully-populated [Result] with a non-empty step list.
//
// The package also houses the deterministic confidence heuristic and
// the fallback constructors used when the remote call cannot be made
// at all.
package analysis
