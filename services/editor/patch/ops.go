// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package patch implements the document patch engine: a closed vocabulary
// of block operations, a validator that checks an operation batch against
// a snapshot, and an applier that folds a validated batch into a new
// snapshot plus a replayable change log.
//
// # Description
//
// Operations arrive from an untrusted generator (typically a language
// model) as loosely shaped JSON. Decode turns them into closed typed
// variants, Validate simulates the batch against the snapshot, and Apply
// produces the new snapshot. Batches are all-or-nothing: if any operation
// fails validation the applier is never invoked and the caller keeps the
// original snapshot.
//
// # Thread Safety
//
// All functions are pure over their inputs; snapshots are cloned before
// any mutation. Callers own concurrency control across invocations.
package patch

import (
	"fmt"

	"github.com/vriteai/vrite/services/editor/document"
)

// =============================================================================
// Operation Kinds
// =============================================================================

// OpKind discriminates the operation variants on the wire.
type OpKind string

const (
	// OpInsertBlock splices a new block after an anchor block.
	OpInsertBlock OpKind = "insert_block"

	// OpReplaceBlock substitutes an existing block in place.
	OpReplaceBlock OpKind = "replace_block"

	// OpDeleteBlock removes an existing block.
	OpDeleteBlock OpKind = "delete_block"

	// OpModifySegments replaces only the segment list of a block,
	// preserving every other block attribute.
	OpModifySegments OpKind = "modify_segments"
)

// String returns the string representation of the kind.
func (k OpKind) String() string {
	return string(k)
}

// StartOfDocument is the anchor sentinel accepted by insert_block to
// splice a block at position 0.
const StartOfDocument = "start-of-document"

// =============================================================================
// Typed Variants
// =============================================================================

// Operation is one discrete document mutation. The concrete types form a
// closed set; each carries only the fields its kind requires, so the
// validator can be exhaustive instead of probing dynamic payloads.
type Operation interface {
	// Kind returns the wire discriminator for this operation.
	Kind() OpKind
}

// InsertBlock splices NewBlock immediately after the block with AfterID,
// or at the start of the document when AtStart is set.
type InsertBlock struct {
	AfterID  string
	AtStart  bool
	NewBlock document.Block
}

// Kind implements Operation.
func (InsertBlock) Kind() OpKind { return OpInsertBlock }

// ReplaceBlock substitutes the block identified by BlockID with NewBlock
// at the same position.
type ReplaceBlock struct {
	BlockID  string
	NewBlock document.Block
}

// Kind implements Operation.
func (ReplaceBlock) Kind() OpKind { return OpReplaceBlock }

// DeleteBlock removes the block identified by BlockID.
type DeleteBlock struct {
	BlockID string
}

// Kind implements Operation.
func (DeleteBlock) Kind() OpKind { return OpDeleteBlock }

// ModifySegments replaces the segment list of the block identified by
// BlockID. Kind, heading level, list kind, and indent depth are untouched.
type ModifySegments struct {
	BlockID     string
	NewSegments []document.Segment
}

// Kind implements Operation.
func (ModifySegments) Kind() OpKind { return OpModifySegments }

// =============================================================================
// Failure Taxonomy
// =============================================================================

// FailureKind classifies why a batch was rejected. Values appear verbatim
// on the wire.
type FailureKind string

const (
	// FailInvalidOperation marks an op that could not be decoded: unknown
	// discriminator or missing required fields.
	FailInvalidOperation FailureKind = "invalid_operation"

	// FailInvalidBlock marks a newBlock violating the block invariants.
	FailInvalidBlock FailureKind = "invalid_block"

	// FailDuplicateID marks an insert whose newBlock.id already exists.
	FailDuplicateID FailureKind = "duplicate_id"

	// FailUnknownAnchor marks an insert whose afterId matches no block.
	FailUnknownAnchor FailureKind = "unknown_anchor"

	// FailUnknownBlock marks an op referencing a nonexistent block id.
	FailUnknownBlock FailureKind = "unknown_block"

	// FailInvalidSegments marks a modify_segments with an empty or
	// malformed segment list.
	FailInvalidSegments FailureKind = "invalid_segments"

	// FailStaleSnapshot marks a batch whose stated base version does not
	// match the snapshot it was validated against.
	FailStaleSnapshot FailureKind = "stale_snapshot"
)

// ValidationError reports the first operation that failed validation.
// Index is -1 for batch-level failures such as a stale snapshot.
type ValidationError struct {
	// Kind classifies the failure.
	Kind FailureKind `json:"kind"`

	// Index is the position of the offending operation in the batch.
	Index int `json:"operationIndex"`

	// Detail is a human-readable explanation.
	Detail string `json:"detail"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("operation %d: %s: %s", e.Index, e.Kind, e.Detail)
}

// =============================================================================
// Wire Decoding
// =============================================================================

// WireOperation is the loose JSON shape of one operation as produced by
// the external generator, before decoding into a typed variant.
type WireOperation struct {
	// Operation is the variant discriminator.
	Operation OpKind `json:"operation"`

	// AfterID anchors insert_block. Null, empty, or the start-of-document
	// sentinel all mean "insert at position 0".
	AfterID *string `json:"afterId,omitempty"`

	// BlockID targets replace_block, delete_block, and modify_segments.
	BlockID string `json:"blockId,omitempty"`

	// NewBlock carries the block payload for insert_block and
	// replace_block.
	NewBlock *document.Block `json:"newBlock,omitempty"`

	// NewSegments carries the segment payload for modify_segments.
	NewSegments []document.Segment `json:"newSegments,omitempty"`
}

// Decode converts wire operations into typed variants.
//
// # Description
//
// Decode performs only shape checks: the discriminator must be known and
// the fields the variant requires must be present. Structural legality
// against a snapshot (anchors exist, ids unique, block invariants) is
// Validate's job. On failure the returned error names the first
// undecodable operation.
func Decode(ops []WireOperation) ([]Operation, *ValidationError) {
	out := make([]Operation, 0, len(ops))
	for i, w := range ops {
		op, err := decodeOne(w)
		if err != nil {
			return nil, &ValidationError{
				Kind:   FailInvalidOperation,
				Index:  i,
				Detail: err.Error(),
			}
		}
		out = append(out, op)
	}
	return out, nil
}

func decodeOne(w WireOperation) (Operation, error) {
	switch w.Operation {
	case OpInsertBlock:
		if w.NewBlock == nil {
			return nil, fmt.Errorf("insert_block requires newBlock")
		}
		op := InsertBlock{NewBlock: document.CloneBlock(*w.NewBlock)}
		if w.AfterID == nil || *w.AfterID == "" || *w.AfterID == StartOfDocument {
			op.AtStart = true
		} else {
			op.AfterID = *w.AfterID
		}
		return op, nil

	case OpReplaceBlock:
		if w.BlockID == "" {
			return nil, fmt.Errorf("replace_block requires blockId")
		}
		if w.NewBlock == nil {
			return nil, fmt.Errorf("replace_block requires newBlock")
		}
		return ReplaceBlock{BlockID: w.BlockID, NewBlock: document.CloneBlock(*w.NewBlock)}, nil

	case OpDeleteBlock:
		if w.BlockID == "" {
			return nil, fmt.Errorf("delete_block requires blockId")
		}
		return DeleteBlock{BlockID: w.BlockID}, nil

	case OpModifySegments:
		if w.BlockID == "" {
			return nil, fmt.Errorf("modify_segments requires blockId")
		}
		segs := make([]document.Segment, len(w.NewSegments))
		copy(segs, w.NewSegments)
		return ModifySegments{BlockID: w.BlockID, NewSegments: segs}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", w.Operation)
	}
}
