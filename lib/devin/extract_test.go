// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package devin

import "testing"

func TestExtractSessionIDPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{
			name:    "top-level id wins",
			session: Session{"id": "a", "session_id": "b", "data": map[string]any{"id": "c"}},
			want:    "a",
		},
		{
			name:    "session_id over sessionId",
			session: Session{"session_id": "b", "sessionId": "c"},
			want:    "b",
		},
		{
			name:    "camel-case sessionId",
			session: Session{"sessionId": "c"},
			want:    "c",
		},
		{
			name:    "nested data.id last",
			session: Session{"data": map[string]any{"id": "d"}},
			want:    "d",
		},
		{
			name:    "empty string fields are skipped",
			session: Session{"id": "", "session_id": "b"},
			want:    "b",
		},
		{
			name:    "non-string id ignored",
			session: Session{"id": 42.0, "session_id": "b"},
			want:    "b",
		},
		{
			name:    "nothing found",
			session: Session{"status": "running"},
			want:    "",
		},
		{
			name:    "data that is not an object",
			session: Session{"data": "not-a-map"},
			want:    "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := extractSessionID(test.session); got != test.want {
				t.Errorf("extractSessionID = %q, want %q", got, test.want)
			}
		})
	}
}
