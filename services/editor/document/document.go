// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package document defines the structured rich-text document model.
//
// # Description
//
// A Document is an ordered sequence of Blocks; a Block is an ordered,
// non-empty sequence of Segments, where each Segment is a run of text
// sharing one formatting state. This is the shared vocabulary for the
// patch validator, the patch applier, and the HTTP wire format.
//
// # Thread Safety
//
// Documents are plain values. A snapshot handed to the patch engine is
// never mutated in place; Clone produces independent copies for callers
// that need them.
package document

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vriteai/vrite/pkg/validation"
)

// =============================================================================
// Block Kinds
// =============================================================================

// BlockKind identifies the structural role of a block.
type BlockKind string

const (
	// KindParagraph is a plain paragraph block.
	KindParagraph BlockKind = "paragraph"

	// KindHeading is a heading block (levels 1-3).
	KindHeading BlockKind = "heading"

	// KindListItem is a single list item. Adjacent list items form a list;
	// there is no separate list container block.
	KindListItem BlockKind = "list-item"
)

// String returns the string representation of the kind.
func (k BlockKind) String() string {
	return string(k)
}

// Valid returns true if the kind is one of the known variants.
func (k BlockKind) Valid() bool {
	return k == KindParagraph || k == KindHeading || k == KindListItem
}

// ListKind identifies the marker style of a list item.
type ListKind string

const (
	// ListBullet is an unordered (bulleted) list item.
	ListBullet ListKind = "bullet"

	// ListNumbered is an ordered (numbered) list item.
	ListNumbered ListKind = "numbered"
)

// String returns the string representation of the list kind.
func (k ListKind) String() string {
	return string(k)
}

// Valid returns true if the list kind is one of the known variants.
func (k ListKind) Valid() bool {
	return k == ListBullet || k == ListNumbered
}

// =============================================================================
// Formatting
// =============================================================================

// Format mask bits. A segment's FormatMask is the bitwise OR of the
// styles that apply to its text.
const (
	// FormatBold marks bold text.
	FormatBold = 1 << 0

	// FormatItalic marks italic text.
	FormatItalic = 1 << 1

	// FormatUnderline marks underlined text.
	FormatUnderline = 1 << 2

	// MaxFormatMask is the largest legal mask value (all three bits set).
	MaxFormatMask = FormatBold | FormatItalic | FormatUnderline
)

// =============================================================================
// Entities
// =============================================================================

// Segment is a run of text sharing one formatting state.
//
// Empty text is permitted (the run carries no content but is still a
// well-formed segment); a FormatMask outside 0-7 is not.
type Segment struct {
	// Text is the segment content. May be empty.
	Text string `json:"text"`

	// FormatMask is the formatting bitmask, 0-7.
	FormatMask int `json:"formatMask"`
}

// Block is one structural unit of a document.
//
// HeadingLevel is meaningful only for headings, ListKind and IndentDepth
// only for list items. IndentDepth is a rendering hint; no parent/child
// linkage is enforced between list items.
type Block struct {
	// ID uniquely identifies the block within its document.
	// IDs are opaque, caller-supplied strings.
	ID string `json:"id"`

	// Kind is the structural role of the block.
	Kind BlockKind `json:"kind"`

	// HeadingLevel is 1-3 when Kind is heading, 0 otherwise.
	HeadingLevel int `json:"headingLevel,omitempty"`

	// ListKind is set when Kind is list-item, empty otherwise.
	ListKind ListKind `json:"listKind,omitempty"`

	// IndentDepth is the list nesting level, >= 0. Only meaningful for
	// list items.
	IndentDepth int `json:"indentDepth,omitempty"`

	// Segments is the ordered, non-empty formatted content of the block.
	Segments []Segment `json:"segments"`
}

// Document is an ordered sequence of blocks with unique IDs.
type Document struct {
	// Version is a monotonically increasing snapshot counter. The patch
	// applier bumps it on every successfully applied batch so callers can
	// detect stale snapshots before accepting a result.
	Version int64 `json:"version,omitempty"`

	// Blocks holds the document content in rendering order.
	Blocks []Block `json:"blocks"`
}

// =============================================================================
// Validation
// =============================================================================

// Block invariant violations. ValidateBlock wraps these so callers can
// classify failures with errors.Is.
var (
	// ErrEmptyID indicates a block with an empty identifier.
	ErrEmptyID = errors.New("block id is empty")

	// ErrInvalidID indicates an identifier that is oversized or carries
	// control characters.
	ErrInvalidID = errors.New("invalid block id")

	// ErrUnknownKind indicates an unrecognized block kind.
	ErrUnknownKind = errors.New("unknown block kind")

	// ErrHeadingLevel indicates a heading level outside 1-3, or a level
	// set on a non-heading block.
	ErrHeadingLevel = errors.New("invalid heading level")

	// ErrListFields indicates list-item fields that are missing on a list
	// item or present on a non-list block.
	ErrListFields = errors.New("invalid list fields")

	// ErrNoSegments indicates a block with zero segments.
	ErrNoSegments = errors.New("block has no segments")

	// ErrFormatMask indicates a segment format mask outside 0-7.
	ErrFormatMask = errors.New("format mask out of range")

	// ErrDuplicateID indicates two blocks sharing an identifier.
	ErrDuplicateID = errors.New("duplicate block id")
)

// ValidateBlock checks a single block against the model invariants:
// non-empty id, known kind, kind-specific fields present or absent as
// required, at least one segment, and every format mask in 0-7.
func ValidateBlock(b Block) error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if err := validation.ValidateBlockID(b.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, b.Kind)
	}

	switch b.Kind {
	case KindHeading:
		if b.HeadingLevel < 1 || b.HeadingLevel > 3 {
			return fmt.Errorf("%w: level %d", ErrHeadingLevel, b.HeadingLevel)
		}
		if b.ListKind != "" || b.IndentDepth != 0 {
			return fmt.Errorf("%w: list fields set on heading", ErrListFields)
		}
	case KindListItem:
		if !b.ListKind.Valid() {
			return fmt.Errorf("%w: listKind %q", ErrListFields, b.ListKind)
		}
		if b.IndentDepth < 0 {
			return fmt.Errorf("%w: indentDepth %d", ErrListFields, b.IndentDepth)
		}
		if b.HeadingLevel != 0 {
			return fmt.Errorf("%w: headingLevel set on list item", ErrHeadingLevel)
		}
	case KindParagraph:
		if b.HeadingLevel != 0 {
			return fmt.Errorf("%w: headingLevel set on paragraph", ErrHeadingLevel)
		}
		if b.ListKind != "" || b.IndentDepth != 0 {
			return fmt.Errorf("%w: list fields set on paragraph", ErrListFields)
		}
	}

	if len(b.Segments) == 0 {
		return ErrNoSegments
	}
	for i, seg := range b.Segments {
		if seg.FormatMask < 0 || seg.FormatMask > MaxFormatMask {
			return fmt.Errorf("%w: segment %d mask %d", ErrFormatMask, i, seg.FormatMask)
		}
	}
	return nil
}

// Validate checks every block and the document-wide unique-id invariant.
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Blocks))
	for i, b := range d.Blocks {
		if err := ValidateBlock(b); err != nil {
			return fmt.Errorf("block %d (%q): %w", i, b.ID, err)
		}
		if _, ok := seen[b.ID]; ok {
			return fmt.Errorf("block %d: %w: %q", i, ErrDuplicateID, b.ID)
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// =============================================================================
// Lookup and Copy Helpers
// =============================================================================

// FindBlockIndex returns the position of the block with the given id,
// or (-1, false) if no such block exists.
func FindBlockIndex(d Document, id string) (int, bool) {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i, true
		}
	}
	return -1, false
}

// CloneBlock returns a deep copy of a block.
func CloneBlock(b Block) Block {
	out := b
	out.Segments = make([]Segment, len(b.Segments))
	copy(out.Segments, b.Segments)
	return out
}

// Clone returns a deep copy of the document. Mutating the copy never
// affects the original snapshot.
func (d Document) Clone() Document {
	out := d
	out.Blocks = make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out.Blocks[i] = CloneBlock(b)
	}
	return out
}

// PlainText returns the concatenated segment text of a block, ignoring
// formatting. Used for change summaries and prompt construction.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, seg := range b.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// Fingerprint returns a hex sha256 of the document's canonical JSON form,
// excluding the version counter. Two snapshots with equal fingerprints
// carry identical content, letting callers detect divergence between
// concurrently edited copies.
func (d Document) Fingerprint() string {
	stripped := d
	stripped.Version = 0
	data, err := json.Marshal(stripped)
	if err != nil {
		// Marshaling plain structs of strings and ints cannot fail.
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
