// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"fmt"
	"strings"
)

// FormatComment renders an analysis as the markdown comment posted
// back to the originating issue.
func FormatComment(result *Result) string {
	summary := result.Summary
	if summary == "" {
		summary = "No summary available"
	}

	var builder strings.Builder
	builder.WriteString("**Devin AI Analysis**\n\n")
	fmt.Fprintf(&builder, "**Summary:** %s\n\n", summary)
	fmt.Fprintf(&builder, "**Confidence Score:** %d%%\n\n", int(result.Confidence*100))
	builder.WriteString("**Proposed Implementation Steps:**\n")
	for i, step := range result.Steps {
		fmt.Fprintf(&builder, "\n%d. %s", i+1, step)
	}
	builder.WriteString("\n\n---\n*This analysis was generated automatically by Devin AI*")
	return builder.String()
}
