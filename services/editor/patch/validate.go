// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package patch

import (
	"fmt"

	"github.com/vriteai/vrite/services/editor/document"
)

// Validate checks an ordered operation batch against a snapshot without
// mutating it.
//
// # Description
//
// Validation is a sequential simulation: each operation is checked
// against the document as it would look after all prior operations in
// the batch, so a later operation may legally reference a block inserted
// by an earlier one. The simulation runs on a clone; the caller's
// snapshot is untouched.
//
// # Outputs
//
//   - *ValidationError: nil if the whole batch is legal, otherwise the
//     index and kind of the first offending operation.
func Validate(doc document.Document, ops []Operation) *ValidationError {
	sim := doc.Clone()
	for i, op := range ops {
		next, _, verr := step(sim, op)
		if verr != nil {
			verr.Index = i
			return verr
		}
		sim = next
	}
	return nil
}

// CheckBaseVersion rejects a batch whose stated base version does not
// match the snapshot it is about to be validated against. This is the
// additive stale-snapshot guard; callers that do not track versions
// simply never invoke it.
func CheckBaseVersion(doc document.Document, base int64) *ValidationError {
	if doc.Version != base {
		return &ValidationError{
			Kind:   FailStaleSnapshot,
			Index:  -1,
			Detail: fmt.Sprintf("batch based on version %d, snapshot is %d", base, doc.Version),
		}
	}
	return nil
}

// step applies a single operation to a snapshot, returning the new
// snapshot and a change record describing what happened.
//
// step is the one reducer shared by Validate and Apply: validation folds
// it and keeps only the error, application folds it and keeps only the
// results. Because both run the identical sequence, a batch that
// validates cleanly cannot fail to apply.
func step(doc document.Document, op Operation) (document.Document, ChangeRecord, *ValidationError) {
	switch o := op.(type) {
	case InsertBlock:
		return stepInsert(doc, o)
	case ReplaceBlock:
		return stepReplace(doc, o)
	case DeleteBlock:
		return stepDelete(doc, o)
	case ModifySegments:
		return stepModifySegments(doc, o)
	default:
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailInvalidOperation,
			Detail: fmt.Sprintf("unsupported operation type %T", op),
		}
	}
}

func stepInsert(doc document.Document, op InsertBlock) (document.Document, ChangeRecord, *ValidationError) {
	if err := document.ValidateBlock(op.NewBlock); err != nil {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailInvalidBlock,
			Detail: fmt.Sprintf("newBlock %q: %v", op.NewBlock.ID, err),
		}
	}
	if _, exists := document.FindBlockIndex(doc, op.NewBlock.ID); exists {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailDuplicateID,
			Detail: fmt.Sprintf("block id %q already exists", op.NewBlock.ID),
		}
	}

	at := 0
	anchor := StartOfDocument
	if !op.AtStart {
		idx, ok := document.FindBlockIndex(doc, op.AfterID)
		if !ok {
			return doc, ChangeRecord{}, &ValidationError{
				Kind:   FailUnknownAnchor,
				Detail: fmt.Sprintf("anchor block %q not found", op.AfterID),
			}
		}
		at = idx + 1
		anchor = op.AfterID
	}

	blocks := make([]document.Block, 0, len(doc.Blocks)+1)
	blocks = append(blocks, doc.Blocks[:at]...)
	blocks = append(blocks, document.CloneBlock(op.NewBlock))
	blocks = append(blocks, doc.Blocks[at:]...)
	doc.Blocks = blocks

	after := document.CloneBlock(op.NewBlock)
	return doc, ChangeRecord{
		Kind:     OpInsertBlock,
		BlockID:  op.NewBlock.ID,
		AnchorID: anchor,
		After:    &after,
	}, nil
}

func stepReplace(doc document.Document, op ReplaceBlock) (document.Document, ChangeRecord, *ValidationError) {
	idx, ok := document.FindBlockIndex(doc, op.BlockID)
	if !ok {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailUnknownBlock,
			Detail: fmt.Sprintf("block %q not found", op.BlockID),
		}
	}
	if err := document.ValidateBlock(op.NewBlock); err != nil {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailInvalidBlock,
			Detail: fmt.Sprintf("newBlock %q: %v", op.NewBlock.ID, err),
		}
	}
	// Identity is not transferable: the replacement may keep the id or
	// take one unused anywhere else in the document.
	if op.NewBlock.ID != op.BlockID {
		if _, taken := document.FindBlockIndex(doc, op.NewBlock.ID); taken {
			return doc, ChangeRecord{}, &ValidationError{
				Kind:   FailInvalidBlock,
				Detail: fmt.Sprintf("newBlock id %q is already used by another block", op.NewBlock.ID),
			}
		}
	}

	before := document.CloneBlock(doc.Blocks[idx])
	blocks := make([]document.Block, len(doc.Blocks))
	copy(blocks, doc.Blocks)
	blocks[idx] = document.CloneBlock(op.NewBlock)
	doc.Blocks = blocks

	after := document.CloneBlock(op.NewBlock)
	return doc, ChangeRecord{
		Kind:    OpReplaceBlock,
		BlockID: op.BlockID,
		Before:  &before,
		After:   &after,
	}, nil
}

func stepDelete(doc document.Document, op DeleteBlock) (document.Document, ChangeRecord, *ValidationError) {
	idx, ok := document.FindBlockIndex(doc, op.BlockID)
	if !ok {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailUnknownBlock,
			Detail: fmt.Sprintf("block %q not found", op.BlockID),
		}
	}

	before := document.CloneBlock(doc.Blocks[idx])
	blocks := make([]document.Block, 0, len(doc.Blocks)-1)
	blocks = append(blocks, doc.Blocks[:idx]...)
	blocks = append(blocks, doc.Blocks[idx+1:]...)
	doc.Blocks = blocks

	return doc, ChangeRecord{
		Kind:    OpDeleteBlock,
		BlockID: op.BlockID,
		Before:  &before,
	}, nil
}

func stepModifySegments(doc document.Document, op ModifySegments) (document.Document, ChangeRecord, *ValidationError) {
	idx, ok := document.FindBlockIndex(doc, op.BlockID)
	if !ok {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailUnknownBlock,
			Detail: fmt.Sprintf("block %q not found", op.BlockID),
		}
	}
	if len(op.NewSegments) == 0 {
		return doc, ChangeRecord{}, &ValidationError{
			Kind:   FailInvalidSegments,
			Detail: "newSegments must not be empty",
		}
	}
	for i, seg := range op.NewSegments {
		if seg.FormatMask < 0 || seg.FormatMask > document.MaxFormatMask {
			return doc, ChangeRecord{}, &ValidationError{
				Kind:   FailInvalidSegments,
				Detail: fmt.Sprintf("segment %d mask %d out of range", i, seg.FormatMask),
			}
		}
	}

	before := document.CloneBlock(doc.Blocks[idx])
	blocks := make([]document.Block, len(doc.Blocks))
	copy(blocks, doc.Blocks)

	// Only the segment list changes; every other attribute of the block
	// is preserved.
	updated := document.CloneBlock(doc.Blocks[idx])
	updated.Segments = make([]document.Segment, len(op.NewSegments))
	copy(updated.Segments, op.NewSegments)
	blocks[idx] = updated
	doc.Blocks = blocks

	after := document.CloneBlock(updated)
	return doc, ChangeRecord{
		Kind:    OpModifySegments,
		BlockID: op.BlockID,
		Before:  &before,
		After:   &after,
	}, nil
}
