// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prompt builds the prompts that ask a language model for a
// document operation batch, and decodes the model's untrusted reply back
// into wire operations.
//
// The contract deliberately forbids free-form rewrites: the model must
// answer with a JSON operation array only, which the patch validator then
// checks against the snapshot before anything is applied.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vriteai/vrite/services/editor/document"
)

// operationContract describes the operation vocabulary to the model. It
// is appended to every editing prompt.
const operationContract = `You edit the document by emitting operations, never by rewriting it.

Reply with a JSON array of operation objects and nothing else. The
supported operations are:

  {"operation":"insert_block","afterId":"<block id>"|"start-of-document"|null,"newBlock":{...}}
  {"operation":"replace_block","blockId":"<block id>","newBlock":{...}}
  {"operation":"delete_block","blockId":"<block id>"}
  {"operation":"modify_segments","blockId":"<block id>","newSegments":[{...}]}

A block object looks like:

  {"id":"<unique id>","kind":"paragraph"|"heading"|"list-item",
   "headingLevel":1|2|3,          // headings only
   "listKind":"bullet"|"numbered", // list items only
   "indentDepth":0,                // list items only
   "segments":[{"text":"...","formatMask":0}]}

formatMask is a bitmask 0-7: 1=bold, 2=italic, 4=underline. Every block
needs at least one segment. New block ids must not collide with existing
ones. Operations apply in order; a later operation may reference a block
inserted by an earlier one. If the instruction requires no change, reply
with [].`

// BuildCommand builds the prompt for a natural-language editing
// instruction against a document snapshot.
func BuildCommand(doc document.Document, instruction string) (string, error) {
	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling document for prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Current document, as a JSON block list:\n\n")
	sb.Write(docJSON)
	sb.WriteString("\n\nUser instruction: ")
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	sb.WriteString(operationContract)
	return sb.String(), nil
}

// BuildFormat builds the prompt for restructuring a document to a named
// formatting standard (APA, MLA, and so on).
func BuildFormat(doc document.Document, formatType string) (string, error) {
	instruction := fmt.Sprintf(
		"Reformat the document to follow %s standards: heading structure, "+
			"capitalization, and emphasis. Keep the author's wording wherever possible.",
		formatType)
	return BuildCommand(doc, instruction)
}

// BuildEnhance builds the free-form generation prompt. The reply is plain
// prose, not operations; it is returned to the caller as-is.
func BuildEnhance(request, context string) string {
	var sb strings.Builder
	if context != "" {
		sb.WriteString("Context: ")
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Generate or enhance the following writing request:\n")
	sb.WriteString(request)
	sb.WriteString("\n\nProvide clear, well-structured content that flows naturally with any existing context.")
	return sb.String()
}
