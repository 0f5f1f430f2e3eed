// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vriteai/vrite/services/editor/patch"
)

// ErrNoOperations indicates the model reply contained no JSON operation
// array at all.
var ErrNoOperations = errors.New("model reply contains no operation array")

// DecodeReply extracts the operation batch from a model reply.
//
// # Description
//
// Models wrap answers in code fences or surround them with prose despite
// instructions, so DecodeReply tolerates both: it strips fences, then
// parses the outermost JSON array found in the text. The result is shape-
// decoded through patch.Decode; structural legality against the snapshot
// remains the validator's job.
func DecodeReply(reply string) ([]patch.Operation, error) {
	raw := extractArray(stripFences(reply))
	if raw == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoOperations, truncate(reply, 120))
	}

	var wire []patch.WireOperation
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("parsing operation array: %w", err)
	}

	ops, verr := patch.Decode(wire)
	if verr != nil {
		return nil, verr
	}
	return ops, nil
}

// stripFences removes markdown code fences, with or without a language
// tag, keeping everything between them.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}
	start := strings.Index(trimmed, "```")
	rest := trimmed[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// extractArray returns the substring from the first '[' to its matching
// last ']', or "" when no array is present.
func extractArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
