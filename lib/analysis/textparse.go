// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parsedText holds whatever heuristic text parsing managed to extract.
// Fields left at their zero value were not found.
type parsedText struct {
	summary       string
	confidence    float64
	hasConfidence bool
	steps         []string
}

// summaryLabelCap bounds a summary extracted from a "Summary" label.
const summaryLabelCap = 500

// summaryHeadingCap bounds a summary extracted from a markdown
// heading section, which tends to contain denser text.
const summaryHeadingCap = 800

var (
	// confidencePattern matches "Confidence: 0.75", "Confidence
	// Score: 0.75", "2. Confidence Score 0.75" and similar.
	confidencePattern = regexp.MustCompile(`(?i)confidence\s*(?:score)?:?\s*(\d+\.?\d*)`)

	// headingSummaryPattern matches a markdown "## Summary" heading
	// and captures the section body up to the next heading or
	// numbered item.
	headingSummaryPattern = regexp.MustCompile(`(?is)(?:^|\n)#{1,6}[ \t]*summary[^\n]*\n(.*?)(?:\n#{1,6}[ \t]|\n\d+\.\s|$)`)

	// labelSummaryPattern matches a "Summary:" or "1. Summary" label
	// line and captures the block that follows, up to the next
	// numbered item.
	labelSummaryPattern = regexp.MustCompile(`(?is)(?:^|\n)(?:\d+\.\s*)?summary[:\s]*\n(.+?)(?:\n\d+\.|$)`)

	phaseStepPattern    = regexp.MustCompile(`(?i)phase\s+\d+:\s*([^\n]+)`)
	numberedStepPattern = regexp.MustCompile(`(?im)^(?:step\s+)?\d+\.\s*(.+)$`)
	bulletStepPattern   = regexp.MustCompile(`(?m)^-\s*(.+)$`)

	numberedLinePattern = regexp.MustCompile(`^\d+\.`)
)

// phaseKeywords mark a candidate step as a plausible top-level
// implementation phase. Tuned by example, not a contract; when the
// filter leaves fewer than three candidates the unfiltered list is
// kept instead, so it only ever sharpens a list, never empties one.
var phaseKeywords = []string{
	"implement", "add", "create", "update", "fix", "test", "review",
	"refactor", "design", "investigate", "setup", "set up", "configure",
	"deploy", "document", "validate", "verify", "build", "remove",
	"migrate", "analyze", "identify", "write",
}

// parseTextResponse extracts structured data from the agent's
// free-text response. Each field runs its own extractor chain; a
// missing field stays at its zero value for the caller to default.
func parseTextResponse(text string) parsedText {
	parsed := parsedText{
		summary: extractSummary(text),
		steps:   extractSteps(text),
	}
	if match := confidencePattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil && validConfidence(value) {
			parsed.confidence = value
			parsed.hasConfidence = true
		}
	}
	return parsed
}

// extractSummary runs the summary extractor chain: markdown heading
// section, then label block, then the first sufficiently long
// non-numbered line, then the leading slice of the raw text.
func extractSummary(text string) string {
	if match := headingSummaryPattern.FindStringSubmatch(text); match != nil {
		if summary := firstParagraph(match[1], summaryHeadingCap); summary != "" {
			return summary
		}
	}
	if match := labelSummaryPattern.FindStringSubmatch(text); match != nil {
		if summary := firstParagraph(match[1], summaryLabelCap); summary != "" {
			return summary
		}
	}

	// No labeled section: take the first long prose line after the
	// title, skipping numbered items.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 2 {
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if line != "" && !numberedLinePattern.MatchString(line) && len(line) > 50 {
				return line
			}
		}
	}

	if len(text) > 100 {
		return strings.TrimSpace(truncate(text, summaryLabelCap))
	}
	return ""
}

// firstParagraph trims a matched section body to its first paragraph,
// capped at limit characters.
func firstParagraph(body string, limit int) string {
	body = strings.TrimSpace(body)
	if first, _, found := strings.Cut(body, "\n\n"); found {
		body = first
	}
	return strings.TrimSpace(truncate(body, limit))
}

// extractSteps runs the step extractor chain: explicit "Phase N:"
// headings, then numbered list items, then bulleted items. A chain
// entry only applies when it yields at least three candidates, so
// stray matches do not masquerade as a plan.
func extractSteps(text string) []string {
	if phases := submatches(phaseStepPattern, text); len(phases) >= 3 {
		return phases
	}
	if numbered := submatches(numberedStepPattern, text); len(numbered) >= 3 {
		return filterMainPhases(numbered)
	}
	if bullets := submatches(bulletStepPattern, text); len(bullets) >= 3 {
		return filterMainPhases(bullets)
	}
	return nil
}

// filterMainPhases keeps candidates that look like top-level
// implementation phases (short enough to be a heading, containing an
// action keyword). If fewer than three survive, the unfiltered list
// is returned — granular sub-steps are better than no steps.
func filterMainPhases(candidates []string) []string {
	kept := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if len(candidate) < 200 && containsAnyKeyword(lower, phaseKeywords) {
			kept = append(kept, candidate)
		}
	}
	if len(kept) >= 3 {
		return kept
	}
	return candidates
}

func submatches(pattern *regexp.Regexp, text string) []string {
	var results []string
	for _, match := range pattern.FindAllStringSubmatch(text, -1) {
		if value := strings.TrimSpace(match[1]); value != "" {
			results = append(results, value)
		}
	}
	return results
}

func containsAnyKeyword(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// truncate bounds text to limit bytes, backing up to a rune boundary
// so the result is always valid UTF-8.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
