// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vriteai/vrite/services/editor/document"
)

func paragraph(id, text string) document.Block {
	return document.Block{
		ID:       id,
		Kind:     document.KindParagraph,
		Segments: []document.Segment{{Text: text, FormatMask: 0}},
	}
}

func baseDoc(blocks ...document.Block) document.Document {
	return document.Document{Blocks: blocks}
}

func blockIDs(d document.Document) []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

// =============================================================================
// Decode
// =============================================================================

func TestDecode(t *testing.T) {
	t.Run("insert_with_null_anchor_means_start", func(t *testing.T) {
		nb := paragraph("n1", "x")
		ops, verr := Decode([]WireOperation{{Operation: OpInsertBlock, NewBlock: &nb}})
		require.Nil(t, verr)
		require.Len(t, ops, 1)
		ins, ok := ops[0].(InsertBlock)
		require.True(t, ok)
		assert.True(t, ins.AtStart)
	})

	t.Run("insert_with_sentinel_anchor", func(t *testing.T) {
		nb := paragraph("n1", "x")
		anchor := StartOfDocument
		ops, verr := Decode([]WireOperation{{Operation: OpInsertBlock, AfterID: &anchor, NewBlock: &nb}})
		require.Nil(t, verr)
		assert.True(t, ops[0].(InsertBlock).AtStart)
	})

	t.Run("insert_missing_new_block", func(t *testing.T) {
		_, verr := Decode([]WireOperation{{Operation: OpInsertBlock}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidOperation, verr.Kind)
		assert.Equal(t, 0, verr.Index)
	})

	t.Run("unknown_operation", func(t *testing.T) {
		_, verr := Decode([]WireOperation{{Operation: "move_block", BlockID: "a"}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidOperation, verr.Kind)
	})

	t.Run("reports_first_bad_index", func(t *testing.T) {
		nb := paragraph("n1", "x")
		_, verr := Decode([]WireOperation{
			{Operation: OpInsertBlock, NewBlock: &nb},
			{Operation: OpDeleteBlock},
		})
		require.NotNil(t, verr)
		assert.Equal(t, 1, verr.Index)
	})
}

// =============================================================================
// Validate
// =============================================================================

func TestValidate(t *testing.T) {
	t.Run("duplicate_insert_id", func(t *testing.T) {
		doc := baseDoc(paragraph("b0", "x"))
		verr := Validate(doc, []Operation{InsertBlock{AtStart: true, NewBlock: paragraph("b0", "y")}})
		require.NotNil(t, verr)
		assert.Equal(t, FailDuplicateID, verr.Kind)
		assert.Equal(t, 0, verr.Index)
	})

	t.Run("unknown_anchor", func(t *testing.T) {
		doc := baseDoc(paragraph("b0", "x"))
		verr := Validate(doc, []Operation{InsertBlock{AfterID: "ghost", NewBlock: paragraph("b1", "y")}})
		require.NotNil(t, verr)
		assert.Equal(t, FailUnknownAnchor, verr.Kind)
	})

	t.Run("unknown_block_on_delete", func(t *testing.T) {
		verr := Validate(baseDoc(), []Operation{DeleteBlock{BlockID: "ghost"}})
		require.NotNil(t, verr)
		assert.Equal(t, FailUnknownBlock, verr.Kind)
	})

	t.Run("invalid_block_payload", func(t *testing.T) {
		bad := document.Block{ID: "b1", Kind: document.KindHeading, HeadingLevel: 9,
			Segments: []document.Segment{{Text: "x"}}}
		verr := Validate(baseDoc(paragraph("b0", "x")),
			[]Operation{InsertBlock{AtStart: true, NewBlock: bad}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidBlock, verr.Kind)
	})

	t.Run("replace_cannot_steal_existing_id", func(t *testing.T) {
		doc := baseDoc(paragraph("a", "1"), paragraph("b", "2"))
		verr := Validate(doc, []Operation{ReplaceBlock{BlockID: "a", NewBlock: paragraph("b", "stolen")}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidBlock, verr.Kind)
	})

	t.Run("replace_may_rename_to_unused_id", func(t *testing.T) {
		doc := baseDoc(paragraph("a", "1"))
		verr := Validate(doc, []Operation{ReplaceBlock{BlockID: "a", NewBlock: paragraph("a2", "1")}})
		assert.Nil(t, verr)
	})

	t.Run("modify_segments_empty_list", func(t *testing.T) {
		doc := baseDoc(paragraph("a", "1"))
		verr := Validate(doc, []Operation{ModifySegments{BlockID: "a"}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidSegments, verr.Kind)
	})

	t.Run("modify_segments_bad_mask", func(t *testing.T) {
		doc := baseDoc(paragraph("a", "1"))
		verr := Validate(doc, []Operation{ModifySegments{
			BlockID:     "a",
			NewSegments: []document.Segment{{Text: "x", FormatMask: 12}},
		}})
		require.NotNil(t, verr)
		assert.Equal(t, FailInvalidSegments, verr.Kind)
	})

	t.Run("later_op_may_reference_earlier_insert", func(t *testing.T) {
		doc := baseDoc(paragraph("b0", "x"))
		verr := Validate(doc, []Operation{
			InsertBlock{AfterID: "b0", NewBlock: paragraph("b1", "y")},
			ModifySegments{BlockID: "b1", NewSegments: []document.Segment{{Text: "z"}}},
		})
		assert.Nil(t, verr)
	})

	t.Run("later_op_on_deleted_block_fails", func(t *testing.T) {
		doc := baseDoc(paragraph("b0", "x"))
		verr := Validate(doc, []Operation{
			DeleteBlock{BlockID: "b0"},
			ModifySegments{BlockID: "b0", NewSegments: []document.Segment{{Text: "z"}}},
		})
		require.NotNil(t, verr)
		assert.Equal(t, FailUnknownBlock, verr.Kind)
		assert.Equal(t, 1, verr.Index)
	})

	t.Run("validate_does_not_mutate_snapshot", func(t *testing.T) {
		doc := baseDoc(paragraph("b0", "x"))
		_ = Validate(doc, []Operation{
			InsertBlock{AfterID: "b0", NewBlock: paragraph("b1", "y")},
		})
		assert.Equal(t, []string{"b0"}, blockIDs(doc))
	})
}

func TestCheckBaseVersion(t *testing.T) {
	doc := document.Document{Version: 4, Blocks: []document.Block{paragraph("a", "1")}}

	assert.Nil(t, CheckBaseVersion(doc, 4))

	verr := CheckBaseVersion(doc, 3)
	require.NotNil(t, verr)
	assert.Equal(t, FailStaleSnapshot, verr.Kind)
	assert.Equal(t, -1, verr.Index)
}

// =============================================================================
// Apply
// =============================================================================

func TestApply_InsertOrderPreservation(t *testing.T) {
	// insert after X, then after the freshly inserted block, yields X,B,C.
	doc := baseDoc(paragraph("x", "anchor"), paragraph("tail", "end"))
	ops := []Operation{
		InsertBlock{AfterID: "x", NewBlock: paragraph("b", "first insert")},
		InsertBlock{AfterID: "b", NewBlock: paragraph("c", "second insert")},
	}

	require.Nil(t, Validate(doc, ops))
	out, records, err := Apply(doc, ops)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "b", "c", "tail"}, blockIDs(out))
	require.Len(t, records, 2)
	assert.Equal(t, OpInsertBlock, records[0].Kind)
	assert.Equal(t, "x", records[0].AnchorID)
	assert.Equal(t, "b", records[1].AnchorID)
}

func TestApply_InsertAtStart(t *testing.T) {
	doc := baseDoc(paragraph("b0", "x"))
	ops := []Operation{InsertBlock{AtStart: true, NewBlock: paragraph("intro", "hi")}}

	require.Nil(t, Validate(doc, ops))
	out, records, err := Apply(doc, ops)
	require.NoError(t, err)

	assert.Equal(t, []string{"intro", "b0"}, blockIDs(out))
	assert.Equal(t, StartOfDocument, records[0].AnchorID)
}

// TestApply_ReplaceScenario is the paragraph-to-heading promotion case:
// replacing a plain "education" paragraph with a bold level-2 "Education"
// heading under the same id.
func TestApply_ReplaceScenario(t *testing.T) {
	doc := baseDoc(document.Block{
		ID:       "b0",
		Kind:     document.KindParagraph,
		Segments: []document.Segment{{Text: "education", FormatMask: 0}},
	})
	heading := document.Block{
		ID:           "b0",
		Kind:         document.KindHeading,
		HeadingLevel: 2,
		Segments:     []document.Segment{{Text: "Education", FormatMask: document.FormatBold}},
	}
	ops := []Operation{ReplaceBlock{BlockID: "b0", NewBlock: heading}}

	require.Nil(t, Validate(doc, ops))
	out, records, err := Apply(doc, ops)
	require.NoError(t, err)

	require.Len(t, out.Blocks, 1)
	assert.Equal(t, heading, out.Blocks[0])
	require.Len(t, records, 1)
	assert.Equal(t, OpReplaceBlock, records[0].Kind)
	assert.Equal(t, "b0", records[0].BlockID)
	assert.Equal(t, "education", records[0].Before.PlainText())
	assert.Equal(t, "Education", records[0].After.PlainText())
}

func TestApply_ModifySegmentsIsolation(t *testing.T) {
	list := document.Block{
		ID:          "l0",
		Kind:        document.KindListItem,
		ListKind:    document.ListBullet,
		IndentDepth: 2,
		Segments:    []document.Segment{{Text: "old", FormatMask: 0}},
	}
	other := paragraph("p0", "untouched")
	doc := baseDoc(list, other)

	ops := []Operation{ModifySegments{
		BlockID:     "l0",
		NewSegments: []document.Segment{{Text: "new", FormatMask: document.FormatItalic}},
	}}

	require.Nil(t, Validate(doc, ops))
	out, _, err := Apply(doc, ops)
	require.NoError(t, err)

	got := out.Blocks[0]
	assert.Equal(t, document.KindListItem, got.Kind)
	assert.Equal(t, list.ListKind, got.ListKind)
	assert.Equal(t, 2, got.IndentDepth)
	assert.Equal(t, 0, got.HeadingLevel)
	assert.Equal(t, "new", got.PlainText())
	assert.Equal(t, other, out.Blocks[1])
}

func TestApply_DeleteEmitsBeforeState(t *testing.T) {
	doc := baseDoc(paragraph("a", "keep"), paragraph("b", "drop"))
	ops := []Operation{DeleteBlock{BlockID: "b"}}

	require.Nil(t, Validate(doc, ops))
	out, records, err := Apply(doc, ops)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, blockIDs(out))
	require.Len(t, records, 1)
	assert.Equal(t, "drop", records[0].Before.PlainText())
	assert.Nil(t, records[0].After)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	doc := baseDoc(paragraph("a", "original"))
	ops := []Operation{ModifySegments{
		BlockID:     "a",
		NewSegments: []document.Segment{{Text: "changed"}},
	}}

	require.Nil(t, Validate(doc, ops))
	out, _, err := Apply(doc, ops)
	require.NoError(t, err)

	assert.Equal(t, "original", doc.Blocks[0].PlainText())
	assert.Equal(t, "changed", out.Blocks[0].PlainText())
	assert.Equal(t, doc.Version+1, out.Version)
}

// TestAtomicity checks that a batch with any invalid operation leaves the
// caller's document exactly as supplied, no matter how many earlier
// operations were individually valid.
func TestAtomicity(t *testing.T) {
	doc := baseDoc(paragraph("b0", "x"), paragraph("b1", "y"))
	want := doc.Clone()

	ops := []Operation{
		InsertBlock{AfterID: "b0", NewBlock: paragraph("new", "fine")},
		DeleteBlock{BlockID: "b1"},
		ModifySegments{BlockID: "ghost", NewSegments: []document.Segment{{Text: "z"}}},
	}

	verr := Validate(doc, ops)
	require.NotNil(t, verr)
	assert.Equal(t, 2, verr.Index)
	assert.Equal(t, FailUnknownBlock, verr.Kind)

	// The contract: on rejection the applier is never invoked, so the
	// snapshot the caller holds is byte-for-byte the input.
	assert.Equal(t, want, doc)
}

func TestApply_RecordsCarryIDsAndOrder(t *testing.T) {
	doc := baseDoc(paragraph("a", "1"), paragraph("b", "2"))
	ops := []Operation{
		ReplaceBlock{BlockID: "a", NewBlock: paragraph("a", "1!")},
		DeleteBlock{BlockID: "b"},
	}

	require.Nil(t, Validate(doc, ops))
	_, records, err := Apply(doc, ops)
	require.NoError(t, err)

	require.Len(t, records, 2)
	for i, rec := range records {
		assert.Equal(t, i, rec.Index)
		assert.NotEmpty(t, rec.ID)
		assert.NotEmpty(t, rec.Summary)
	}
	assert.NotEqual(t, records[0].ID, records[1].ID)
}
