// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides request and response types for the editor
// service HTTP surface, with the size caps and validation rules applied
// before any engine work runs.
package datatypes

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/vriteai/vrite/services/editor/document"
	"github.com/vriteai/vrite/services/editor/patch"
	"github.com/vriteai/vrite/services/editor/textdiff"
)

// =============================================================================
// Size Caps
// =============================================================================

const (
	// MaxContentBytes caps legacy-mode content. The matcher scan is
	// O(content x pairs); unbounded adversarial input is rejected here.
	MaxContentBytes = 256 * 1024 // 256KB

	// MaxInstructionBytes caps a natural-language instruction.
	MaxInstructionBytes = 8 * 1024 // 8KB

	// MaxOperationsPerBatch caps a structured patch batch.
	MaxOperationsPerBatch = 200

	// MaxPairsPerBatch caps a legacy text-diff batch.
	MaxPairsPerBatch = 100

	// MaxBlocksPerDocument caps an incoming document snapshot.
	MaxBlocksPerDocument = 5000
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// editorValidate is the validator instance for editor datatypes.
var editorValidate *validator.Validate

func init() {
	editorValidate = validator.New()
	_ = editorValidate.RegisterValidation("instructionbytes", validateInstructionBytes)
}

// validateInstructionBytes enforces MaxInstructionBytes on string fields.
// Byte length, not rune count: the cap guards memory, not semantics.
func validateInstructionBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxInstructionBytes
}

// =============================================================================
// Structured-Patch Mode
// =============================================================================

// PatchRequest is the structured-patch entry contract: a snapshot plus an
// ordered operation batch.
type PatchRequest struct {
	// Document is the base snapshot the batch was generated against.
	Document document.Document `json:"document"`

	// Operations is the ordered batch to validate and apply.
	Operations []patch.WireOperation `json:"operations" binding:"required"`

	// BaseVersion, when present, must match Document.Version; otherwise
	// the batch is rejected as stale before validation.
	BaseVersion *int64 `json:"baseVersion,omitempty"`
}

// Validate applies the size caps and the document's own invariants.
func (r *PatchRequest) Validate() error {
	if len(r.Operations) > MaxOperationsPerBatch {
		return fmt.Errorf("batch has %d operations, cap is %d",
			len(r.Operations), MaxOperationsPerBatch)
	}
	if len(r.Document.Blocks) > MaxBlocksPerDocument {
		return fmt.Errorf("document has %d blocks, cap is %d",
			len(r.Document.Blocks), MaxBlocksPerDocument)
	}
	if err := r.Document.Validate(); err != nil {
		return fmt.Errorf("invalid document snapshot: %w", err)
	}
	return nil
}

// PatchResponse is the structured-patch success payload.
type PatchResponse struct {
	// Document is the new snapshot.
	Document document.Document `json:"document"`

	// Changes is the ordered change log of the applied batch.
	Changes []patch.ChangeRecord `json:"changes"`
}

// PatchErrorResponse is the structured-patch rejection payload. The
// caller's document is unchanged when this is returned.
type PatchErrorResponse struct {
	Error patch.ValidationError `json:"error"`
}

// =============================================================================
// Legacy Text-Diff Mode
// =============================================================================

// TextDiffRequest is the legacy entry contract: flat content plus ordered
// replacement pairs.
type TextDiffRequest struct {
	// Content is the flat markdown string to edit.
	Content string `json:"content"`

	// Pairs is the ordered replacement list.
	Pairs []textdiff.Pair `json:"pairs" binding:"required"`
}

// Validate applies the size caps.
func (r *TextDiffRequest) Validate() error {
	if len(r.Content) > MaxContentBytes {
		return fmt.Errorf("content is %d bytes, cap is %d", len(r.Content), MaxContentBytes)
	}
	if len(r.Pairs) > MaxPairsPerBatch {
		return fmt.Errorf("batch has %d pairs, cap is %d", len(r.Pairs), MaxPairsPerBatch)
	}
	return nil
}

// TextDiffResponse is the legacy-mode result payload. Unresolved pairs
// are reported in Skipped; they never abort the batch.
type TextDiffResponse struct {
	Content string                 `json:"content"`
	Changes []textdiff.Change      `json:"changes"`
	Skipped []textdiff.SkippedPair `json:"skipped"`
}

// =============================================================================
// LLM-Driven Modes
// =============================================================================

// CommandRequest asks the service to translate a natural-language
// instruction into an operation batch and apply it.
type CommandRequest struct {
	// Document is the snapshot to edit.
	Document document.Document `json:"document"`

	// Instruction is the user's editing instruction.
	Instruction string `json:"instruction" binding:"required" validate:"required,instructionbytes"`
}

// Validate applies the caps and invariants.
func (r *CommandRequest) Validate() error {
	if err := editorValidate.Struct(r); err != nil {
		return err
	}
	if len(r.Document.Blocks) > MaxBlocksPerDocument {
		return fmt.Errorf("document has %d blocks, cap is %d",
			len(r.Document.Blocks), MaxBlocksPerDocument)
	}
	if err := r.Document.Validate(); err != nil {
		return fmt.Errorf("invalid document snapshot: %w", err)
	}
	return nil
}

// FormatRequest asks for a whole-document reformat to a named standard.
type FormatRequest struct {
	// Document is the snapshot to reformat.
	Document document.Document `json:"document"`

	// FormatType names the standard, e.g. "APA". Defaults to APA.
	FormatType string `json:"format_type"`
}

// Validate applies the caps and invariants, and defaults FormatType.
func (r *FormatRequest) Validate() error {
	if r.FormatType == "" {
		r.FormatType = "APA"
	}
	if len(r.Document.Blocks) > MaxBlocksPerDocument {
		return fmt.Errorf("document has %d blocks, cap is %d",
			len(r.Document.Blocks), MaxBlocksPerDocument)
	}
	if err := r.Document.Validate(); err != nil {
		return fmt.Errorf("invalid document snapshot: %w", err)
	}
	return nil
}

// EnhanceRequest asks for generated prose, optionally grounded in
// existing context.
type EnhanceRequest struct {
	// Prompt is the writing request.
	Prompt string `json:"prompt" binding:"required" validate:"required,instructionbytes"`

	// Context is optional surrounding text for the model.
	Context string `json:"context,omitempty"`
}

// Validate applies the validator rules.
func (r *EnhanceRequest) Validate() error {
	if len(r.Context) > MaxContentBytes {
		return fmt.Errorf("context is %d bytes, cap is %d", len(r.Context), MaxContentBytes)
	}
	return editorValidate.Struct(r)
}

// EnhanceResponse carries the generated prose. The field name matches the
// original public API.
type EnhanceResponse struct {
	EnhancedContent string `json:"enhanced_content"`
}
