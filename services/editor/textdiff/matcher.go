// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package textdiff implements the legacy exact-text diff engine.
//
// # Description
//
// Edits in legacy mode arrive as (oldText, newText) string pairs against a
// flat markdown string rather than structured operations. The matcher
// locates exact substring occurrences, disambiguates repeats with optional
// context hints, and reports edits as positional change records. Pairs
// that cannot be resolved are skipped and surfaced to the caller; a flat
// string gives no way to reason about document-wide consistency, so one
// unresolvable pair must not abort unrelated edits.
//
// # Determinism
//
// Replace is a pure function: the same content and pair list always yields
// the same output. The scan is O(len(content) x len(pairs)); callers cap
// input sizes before invoking it.
package textdiff

import "strings"

// =============================================================================
// Pairs and Outcomes
// =============================================================================

// Pair is one requested replacement. ContextBefore and ContextAfter are
// verbatim substrings expected immediately around the match, used only to
// disambiguate repeated occurrences.
type Pair struct {
	// OldText is the exact substring to find. Must be non-empty.
	OldText string `json:"oldText"`

	// NewText is the replacement text. May be empty (deletion).
	NewText string `json:"newText"`

	// ContextBefore is an optional verbatim prefix hint.
	ContextBefore string `json:"contextBefore,omitempty"`

	// ContextAfter is an optional verbatim suffix hint.
	ContextAfter string `json:"contextAfter,omitempty"`
}

// Change records one applied replacement.
type Change struct {
	// Offset is the byte offset of the match in the content as it was at
	// replacement time (prior pairs in the batch already applied).
	Offset int `json:"offset"`

	// OldText is the text that was replaced.
	OldText string `json:"oldText"`

	// NewText is the text it was replaced with.
	NewText string `json:"newText"`

	// Ambiguous marks a replacement chosen heuristically: the pair
	// matched more than once and context hints did not narrow it to a
	// single occurrence, so the first occurrence was taken.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// SkipReason classifies why a pair was not applied.
type SkipReason string

const (
	// SkipInvalidPair marks a pair with empty oldText; there is nothing
	// to anchor the search on.
	SkipInvalidPair SkipReason = "invalid_pair"

	// SkipTextNotFound marks a pair whose oldText does not occur in the
	// current content.
	SkipTextNotFound SkipReason = "text_not_found"

	// SkipAmbiguous marks a pair skipped under strict mode because
	// context hints left more than one candidate occurrence.
	SkipAmbiguous SkipReason = "ambiguous"
)

// SkippedPair reports a pair that was not applied, with the reason.
type SkippedPair struct {
	// OldText and NewText echo the unapplied pair.
	OldText string `json:"oldText"`
	NewText string `json:"newText"`

	// Reason classifies the failure.
	Reason SkipReason `json:"reason"`
}

// Options tunes matcher policy.
type Options struct {
	// StrictAmbiguity, when set, skips a pair that remains ambiguous
	// after context hints instead of replacing the first occurrence.
	// The default (false) preserves the replace-first heuristic.
	StrictAmbiguity bool
}

// Result is the outcome of running a pair batch against content.
type Result struct {
	// Content is the final string with all applied replacements.
	Content string `json:"content"`

	// Changes lists applied replacements in pair order.
	Changes []Change `json:"changes"`

	// Skipped lists unapplied pairs in pair order.
	Skipped []SkippedPair `json:"skipped"`
}

// =============================================================================
// Matcher
// =============================================================================

// Replace applies an ordered pair list to content.
//
// # Description
//
// Pairs run sequentially: each applied replacement is visible to the
// searches of every later pair. A pair with zero occurrences is skipped
// and recorded, not fatal. A pair with several occurrences is narrowed by
// its context hints; if exactly one candidate survives it is replaced
// cleanly, otherwise the first candidate is replaced and the change is
// flagged ambiguous (or, under Options.StrictAmbiguity, the pair is
// skipped instead).
func Replace(content string, pairs []Pair, opts Options) Result {
	res := Result{
		Content: content,
		Changes: make([]Change, 0, len(pairs)),
		Skipped: make([]SkippedPair, 0),
	}

	for _, p := range pairs {
		if p.OldText == "" {
			res.Skipped = append(res.Skipped, skipped(p, SkipInvalidPair))
			continue
		}

		candidates := occurrences(res.Content, p.OldText)
		if len(candidates) == 0 {
			res.Skipped = append(res.Skipped, skipped(p, SkipTextNotFound))
			continue
		}

		offset := candidates[0]
		ambiguous := false
		if len(candidates) > 1 {
			narrowed := filterByContext(res.Content, candidates, p)
			switch {
			case len(narrowed) == 1:
				offset = narrowed[0]
			case len(narrowed) > 1:
				// Hints did not settle it; take the first survivor.
				offset = narrowed[0]
				ambiguous = true
			default:
				// Hints matched nothing. The hints come from the same
				// untrusted generator as the pair, so fall back to the
				// raw candidates rather than dropping the edit.
				ambiguous = true
			}
			if ambiguous && opts.StrictAmbiguity {
				res.Skipped = append(res.Skipped, skipped(p, SkipAmbiguous))
				continue
			}
		}

		res.Content = res.Content[:offset] + p.NewText + res.Content[offset+len(p.OldText):]
		res.Changes = append(res.Changes, Change{
			Offset:    offset,
			OldText:   p.OldText,
			NewText:   p.NewText,
			Ambiguous: ambiguous,
		})
	}

	return res
}

func skipped(p Pair, reason SkipReason) SkippedPair {
	return SkippedPair{OldText: p.OldText, NewText: p.NewText, Reason: reason}
}

// occurrences returns the byte offsets of every non-overlapping match of
// needle in haystack, in ascending order.
func occurrences(haystack, needle string) []int {
	var offs []int
	for pos := 0; ; {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 {
			return offs
		}
		offs = append(offs, pos+i)
		pos += i + len(needle)
	}
}

// filterByContext keeps the candidate offsets whose surrounding text
// matches the pair's non-empty context hints verbatim.
func filterByContext(content string, candidates []int, p Pair) []int {
	if p.ContextBefore == "" && p.ContextAfter == "" {
		return candidates
	}
	var kept []int
	for _, off := range candidates {
		if p.ContextBefore != "" {
			start := off - len(p.ContextBefore)
			if start < 0 || content[start:off] != p.ContextBefore {
				continue
			}
		}
		if p.ContextAfter != "" {
			end := off + len(p.OldText) + len(p.ContextAfter)
			if end > len(content) || content[off+len(p.OldText):end] != p.ContextAfter {
				continue
			}
		}
		kept = append(kept, off)
	}
	return kept
}
