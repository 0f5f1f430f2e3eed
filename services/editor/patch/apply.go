// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package patch

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vriteai/vrite/services/editor/document"
)

// =============================================================================
// Change Records
// =============================================================================

// ChangeRecord describes one applied operation with enough before/after
// content for a consumer to render a human-readable summary without
// re-deriving it from two full snapshots. Records preserve batch order.
type ChangeRecord struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// Index is the operation's position in the batch.
	Index int `json:"index"`

	// Kind is the applied operation's discriminator.
	Kind OpKind `json:"kind"`

	// BlockID is the affected block. For inserts this is the new block.
	BlockID string `json:"blockId"`

	// AnchorID is the insert anchor (or the start-of-document sentinel).
	// Empty for non-insert operations.
	AnchorID string `json:"anchorId,omitempty"`

	// Before is the block state prior to the operation. Nil for inserts.
	Before *document.Block `json:"before,omitempty"`

	// After is the block state after the operation. Nil for deletes.
	After *document.Block `json:"after,omitempty"`

	// Summary is a one-line human-readable description.
	Summary string `json:"summary"`
}

// summarize builds the one-line description for a finished record.
func summarize(r ChangeRecord) string {
	switch r.Kind {
	case OpInsertBlock:
		return fmt.Sprintf("inserted %s %q after %s: %q",
			r.After.Kind, r.BlockID, r.AnchorID, r.After.PlainText())
	case OpReplaceBlock:
		return fmt.Sprintf("replaced %s %q: %q -> %s %q",
			r.Before.Kind, r.BlockID, r.Before.PlainText(), r.After.Kind, r.After.PlainText())
	case OpDeleteBlock:
		return fmt.Sprintf("deleted %s %q: %q",
			r.Before.Kind, r.BlockID, r.Before.PlainText())
	case OpModifySegments:
		return fmt.Sprintf("reformatted %q: %q -> %q",
			r.BlockID, r.Before.PlainText(), r.After.PlainText())
	default:
		return string(r.Kind)
	}
}

// =============================================================================
// Applier
// =============================================================================

// Apply folds a validated operation batch into a new snapshot.
//
// # Description
//
// Apply must only be called with a batch that Validate accepted against
// the same snapshot. It re-runs the identical sequential reduction, so by
// construction no step can fail; a failure here means the contract was
// broken and is reported as an error rather than a panic.
//
// The input snapshot is never mutated. The returned snapshot carries a
// bumped version counter and the ordered change log of every applied
// operation.
//
// # Outputs
//
//   - document.Document: the new snapshot (input + batch, version+1)
//   - []ChangeRecord: one record per operation, in batch order
//   - error: non-nil only if the batch was not validated first
func Apply(doc document.Document, ops []Operation) (document.Document, []ChangeRecord, error) {
	out := doc.Clone()
	records := make([]ChangeRecord, 0, len(ops))

	for i, op := range ops {
		next, rec, verr := step(out, op)
		if verr != nil {
			verr.Index = i
			return doc, nil, fmt.Errorf("apply called with unvalidated batch: %w", verr)
		}
		rec.ID = uuid.NewString()
		rec.Index = i
		rec.Summary = summarize(rec)
		records = append(records, rec)
		out = next
	}

	out.Version = doc.Version + 1
	return out, records, nil
}
