// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for identifiers
// that cross trust boundaries.
//
// Block identifiers arrive from frontends and from LLM output, and end up
// in log lines, change records, and client-visible error details. These
// validators keep control characters and oversized values out of those
// paths.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxBlockIDLength caps block identifier length in bytes. UUIDs, nanoids,
// and counter-based ids all fit with room to spare.
const MaxBlockIDLength = 128

// ValidateBlockID validates a block identifier.
//
// Valid identifiers:
//   - 1 to MaxBlockIDLength bytes
//   - Valid UTF-8
//   - No control characters (newlines, tabs, escape sequences)
//
// Returns an error describing the first violation.
//
// Example:
//
//	if err := validation.ValidateBlockID(id); err != nil {
//	    return fmt.Errorf("invalid block id: %w", err)
//	}
func ValidateBlockID(id string) error {
	if id == "" {
		return fmt.Errorf("block id cannot be empty")
	}
	if len(id) > MaxBlockIDLength {
		return fmt.Errorf("block id is %d bytes, max is %d", len(id), MaxBlockIDLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("block id is not valid UTF-8")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("block id contains control character %q", r)
		}
	}
	return nil
}

// ValidateBlockIDs validates multiple identifiers. Returns an error
// listing every invalid id if any fail.
func ValidateBlockIDs(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateBlockID(id); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q (%v)", id, err))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid block ids: %s", strings.Join(invalid, ", "))
	}
	return nil
}
