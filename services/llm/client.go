// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm abstracts the language-model backends used to turn editing
// instructions into document operations. The editor core never talks to a
// provider directly; it depends only on LLMClient.
package llm

import "context"

// GenerationParams tunes a single generation call. Nil fields use the
// backend's defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Float32 returns a pointer to v, for inline GenerationParams literals.
func Float32(v float32) *float32 { return &v }

// Int returns a pointer to v, for inline GenerationParams literals.
func Int(v int) *int { return &v }
