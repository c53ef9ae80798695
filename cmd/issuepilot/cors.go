// Copyright 2026 The Issuepilot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "net/http"

// corsMiddleware grants the configured frontend origins cross-origin
// access, including credentialed requests, and answers preflights.
// Requests from unlisted origins pass through without CORS headers;
// the browser enforces the denial.
func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		origin := request.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			header := writer.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Cache-Control")
			header.Add("Vary", "Origin")
		}

		if request.Method == http.MethodOptions {
			writer.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
