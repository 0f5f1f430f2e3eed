// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package document

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func paragraph(id, text string) Block {
	return Block{
		ID:       id,
		Kind:     KindParagraph,
		Segments: []Segment{{Text: text, FormatMask: 0}},
	}
}

func TestValidateBlock(t *testing.T) {
	t.Run("valid_paragraph", func(t *testing.T) {
		if err := ValidateBlock(paragraph("b1", "hello")); err != nil {
			t.Fatalf("ValidateBlock() error = %v", err)
		}
	})

	t.Run("valid_heading", func(t *testing.T) {
		b := Block{
			ID:           "h1",
			Kind:         KindHeading,
			HeadingLevel: 2,
			Segments:     []Segment{{Text: "Education", FormatMask: FormatBold}},
		}
		if err := ValidateBlock(b); err != nil {
			t.Fatalf("ValidateBlock() error = %v", err)
		}
	})

	t.Run("valid_list_item", func(t *testing.T) {
		b := Block{
			ID:          "l1",
			Kind:        KindListItem,
			ListKind:    ListNumbered,
			IndentDepth: 2,
			Segments:    []Segment{{Text: "first", FormatMask: 0}},
		}
		if err := ValidateBlock(b); err != nil {
			t.Fatalf("ValidateBlock() error = %v", err)
		}
	})

	t.Run("empty_id", func(t *testing.T) {
		b := paragraph("", "x")
		if err := ValidateBlock(b); !errors.Is(err, ErrEmptyID) {
			t.Fatalf("expected ErrEmptyID, got %v", err)
		}
	})

	t.Run("control_character_id", func(t *testing.T) {
		b := paragraph("b1\n", "x")
		if err := ValidateBlock(b); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("unknown_kind", func(t *testing.T) {
		b := Block{ID: "b1", Kind: "table", Segments: []Segment{{Text: "x"}}}
		if err := ValidateBlock(b); !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("expected ErrUnknownKind, got %v", err)
		}
	})

	t.Run("heading_level_out_of_range", func(t *testing.T) {
		for _, level := range []int{0, 4, -1} {
			b := Block{
				ID:           "h1",
				Kind:         KindHeading,
				HeadingLevel: level,
				Segments:     []Segment{{Text: "x"}},
			}
			if err := ValidateBlock(b); !errors.Is(err, ErrHeadingLevel) {
				t.Fatalf("level %d: expected ErrHeadingLevel, got %v", level, err)
			}
		}
	})

	t.Run("heading_level_on_paragraph", func(t *testing.T) {
		b := paragraph("b1", "x")
		b.HeadingLevel = 2
		if err := ValidateBlock(b); !errors.Is(err, ErrHeadingLevel) {
			t.Fatalf("expected ErrHeadingLevel, got %v", err)
		}
	})

	t.Run("list_fields_on_paragraph", func(t *testing.T) {
		b := paragraph("b1", "x")
		b.ListKind = ListBullet
		if err := ValidateBlock(b); !errors.Is(err, ErrListFields) {
			t.Fatalf("expected ErrListFields, got %v", err)
		}
	})

	t.Run("list_item_missing_list_kind", func(t *testing.T) {
		b := Block{ID: "l1", Kind: KindListItem, Segments: []Segment{{Text: "x"}}}
		if err := ValidateBlock(b); !errors.Is(err, ErrListFields) {
			t.Fatalf("expected ErrListFields, got %v", err)
		}
	})

	t.Run("no_segments", func(t *testing.T) {
		b := Block{ID: "b1", Kind: KindParagraph}
		if err := ValidateBlock(b); !errors.Is(err, ErrNoSegments) {
			t.Fatalf("expected ErrNoSegments, got %v", err)
		}
	})

	t.Run("empty_segment_text_allowed", func(t *testing.T) {
		b := Block{ID: "b1", Kind: KindParagraph, Segments: []Segment{{Text: ""}}}
		if err := ValidateBlock(b); err != nil {
			t.Fatalf("ValidateBlock() error = %v", err)
		}
	})

	t.Run("format_mask_out_of_range", func(t *testing.T) {
		for _, mask := range []int{-1, 8, 255} {
			b := Block{
				ID:       "b1",
				Kind:     KindParagraph,
				Segments: []Segment{{Text: "x", FormatMask: mask}},
			}
			if err := ValidateBlock(b); !errors.Is(err, ErrFormatMask) {
				t.Fatalf("mask %d: expected ErrFormatMask, got %v", mask, err)
			}
		}
	})
}

func TestDocumentValidate(t *testing.T) {
	t.Run("unique_ids", func(t *testing.T) {
		doc := Document{Blocks: []Block{paragraph("a", "1"), paragraph("b", "2")}}
		if err := doc.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	})

	t.Run("duplicate_ids_rejected", func(t *testing.T) {
		doc := Document{Blocks: []Block{paragraph("a", "1"), paragraph("a", "2")}}
		if err := doc.Validate(); !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}
	})

	t.Run("empty_document_valid", func(t *testing.T) {
		if err := (Document{}).Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	})
}

func TestFindBlockIndex(t *testing.T) {
	doc := Document{Blocks: []Block{paragraph("a", "1"), paragraph("b", "2")}}

	if idx, ok := FindBlockIndex(doc, "b"); !ok || idx != 1 {
		t.Fatalf("FindBlockIndex(b) = %d, %v", idx, ok)
	}
	if idx, ok := FindBlockIndex(doc, "missing"); ok || idx != -1 {
		t.Fatalf("FindBlockIndex(missing) = %d, %v", idx, ok)
	}
}

func TestClone_Independent(t *testing.T) {
	doc := Document{Version: 3, Blocks: []Block{paragraph("a", "original")}}
	clone := doc.Clone()

	clone.Blocks[0].Segments[0].Text = "mutated"
	clone.Blocks = append(clone.Blocks, paragraph("b", "new"))

	if doc.Blocks[0].Segments[0].Text != "original" {
		t.Fatal("mutating clone segments leaked into original")
	}
	if len(doc.Blocks) != 1 {
		t.Fatal("mutating clone block list leaked into original")
	}
}

func TestPlainText(t *testing.T) {
	b := Block{
		ID:   "b1",
		Kind: KindParagraph,
		Segments: []Segment{
			{Text: "Hello, ", FormatMask: 0},
			{Text: "world", FormatMask: FormatBold},
		},
	}
	if got := b.PlainText(); got != "Hello, world" {
		t.Fatalf("PlainText() = %q", got)
	}
}

// TestWireRoundTrip covers the round-trip property: serializing a document
// and deserializing it yields an equal document with ids, order, and all
// attributes preserved.
func TestWireRoundTrip(t *testing.T) {
	doc := Document{
		Version: 7,
		Blocks: []Block{
			{
				ID:           "h0",
				Kind:         KindHeading,
				HeadingLevel: 1,
				Segments:     []Segment{{Text: "Title", FormatMask: FormatBold | FormatItalic}},
			},
			paragraph("p0", "Body text."),
			{
				ID:          "l0",
				Kind:        KindListItem,
				ListKind:    ListBullet,
				IndentDepth: 1,
				Segments:    []Segment{{Text: "item", FormatMask: FormatUnderline}},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(doc, back) {
		t.Fatalf("round trip mismatch:\n  in:  %+v\n  out: %+v", doc, back)
	}
}

func TestFingerprint(t *testing.T) {
	a := Document{Blocks: []Block{paragraph("a", "same")}}
	b := Document{Version: 5, Blocks: []Block{paragraph("a", "same")}}
	c := Document{Blocks: []Block{paragraph("a", "different")}}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("fingerprint should ignore the version counter")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatal("fingerprint should change with content")
	}
}
