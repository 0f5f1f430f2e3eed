// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command vrite starts the Vrite editor HTTP server or runs the patch
// engine against local files.
//
// # Environment Variables
//
//   - VRITE_PORT: HTTP server port (default: 8000)
//   - LLM_BACKEND_TYPE: LLM provider - openai, ollama, stub (default: openai)
//   - VRITE_ALLOWED_ORIGINS: comma-separated CORS origins (default: http://localhost:3000)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional)
//   - VRITE_LOG_DIR: directory for JSON log files (optional)
//
// # Usage
//
//	# Serve the HTTP API
//	vrite serve
//
//	# Apply an operation batch to a document snapshot offline
//	vrite apply --document doc.json --operations ops.json
//
//	# Run legacy exact-text replacement pairs against flat content
//	vrite textdiff --content draft.md --pairs pairs.json
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
