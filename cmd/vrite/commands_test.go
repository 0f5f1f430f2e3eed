// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunApply(t *testing.T) {
	dir := t.TempDir()
	docPath := writeFile(t, dir, "doc.json", `{
		"version": 1,
		"blocks": [
			{"id": "b0", "kind": "paragraph", "segments": [{"text": "hello"}]}
		]
	}`)
	opsPath := writeFile(t, dir, "ops.json", `[
		{"operation": "modify_segments", "blockId": "b0",
		 "newSegments": [{"text": "goodbye", "formatMask": 2}]}
	]`)

	applyDocPath = docPath
	applyOpsPath = opsPath

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runApply(cmd, nil); err != nil {
		t.Fatalf("runApply: %v", err)
	}

	var result struct {
		Document struct {
			Version int64 `json:"version"`
			Blocks  []struct {
				Segments []struct {
					Text string `json:"text"`
				} `json:"segments"`
			} `json:"blocks"`
		} `json:"document"`
		Changes []json.RawMessage `json:"changes"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Document.Version != 2 {
		t.Errorf("version = %d, want 2", result.Document.Version)
	}
	if result.Document.Blocks[0].Segments[0].Text != "goodbye" {
		t.Errorf("text = %q", result.Document.Blocks[0].Segments[0].Text)
	}
	if len(result.Changes) != 1 {
		t.Errorf("changes = %d, want 1", len(result.Changes))
	}
}

func TestRunApply_RejectedBatch(t *testing.T) {
	dir := t.TempDir()
	applyDocPath = writeFile(t, dir, "doc.json",
		`{"blocks": [{"id": "b0", "kind": "paragraph", "segments": [{"text": "x"}]}]}`)
	applyOpsPath = writeFile(t, dir, "ops.json",
		`[{"operation": "delete_block", "blockId": "ghost"}]`)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runApply(cmd, nil)
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if !strings.Contains(err.Error(), "unknown_block") {
		t.Errorf("error = %v, want unknown_block", err)
	}
}

func TestRunTextDiff(t *testing.T) {
	dir := t.TempDir()
	diffContent = writeFile(t, dir, "draft.md", "Education\n\nEducation")
	diffPairsPath = writeFile(t, dir, "pairs.json",
		`[{"oldText": "Education", "newText": "**Education**"}]`)
	strictAmbiguity = false

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runTextDiff(cmd, nil); err != nil {
		t.Fatalf("runTextDiff: %v", err)
	}

	var result struct {
		Content string `json:"content"`
		Changes []struct {
			Offset    int  `json:"offset"`
			Ambiguous bool `json:"ambiguous,omitempty"`
		} `json:"changes"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Content != "**Education**\n\nEducation" {
		t.Errorf("content = %q", result.Content)
	}
	if len(result.Changes) != 1 || !result.Changes[0].Ambiguous {
		t.Errorf("changes = %+v", result.Changes)
	}
}
