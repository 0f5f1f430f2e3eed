// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vriteai/vrite/services/editor/datatypes"
	"github.com/vriteai/vrite/services/editor/document"
	"github.com/vriteai/vrite/services/editor/observability"
	"github.com/vriteai/vrite/services/editor/patch"
	"github.com/vriteai/vrite/services/editor/prompt"
	"github.com/vriteai/vrite/services/llm"
)

// Generation parameters per mode. Command and format need near-deterministic
// structured output; enhance is creative prose.
var (
	commandParams = llm.GenerationParams{
		Temperature: llm.Float32(0.3),
		MaxTokens:   llm.Int(2000),
	}
	formatParams = llm.GenerationParams{
		Temperature: llm.Float32(0.1),
		MaxTokens:   llm.Int(2000),
	}
	enhanceParams = llm.GenerationParams{
		Temperature: llm.Float32(0.7),
		MaxTokens:   llm.Int(1500),
	}
)

// RunCommand translates a natural-language instruction into an operation
// batch via the LLM and applies it to the snapshot.
//
// # Responses
//
//   - 200: PatchResponse with the new snapshot and change log.
//   - 400: Malformed body or cap breach.
//   - 422: The generated batch failed validation.
//   - 502: The LLM call failed or returned no usable operations.
func RunCommand(client llm.LLMClient, metrics *observability.EditorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CommandRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := prompt.BuildCommand(req.Document, req.Instruction)
		if err != nil {
			slog.Error("Failed to build command prompt", "error", err)
			metrics.RecordError(observability.ModeCommand)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		applyGeneratedPatch(c, client, metrics, observability.ModeCommand, req.Document, p, commandParams)
	}
}

// FormatDocument reformats the whole snapshot to a named standard via the
// LLM. FormatType defaults to APA.
func FormatDocument(client llm.LLMClient, metrics *observability.EditorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.FormatRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := prompt.BuildFormat(req.Document, req.FormatType)
		if err != nil {
			slog.Error("Failed to build format prompt", "error", err)
			metrics.RecordError(observability.ModeFormat)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		applyGeneratedPatch(c, client, metrics, observability.ModeFormat, req.Document, p, formatParams)
	}
}

// EnhanceText generates prose for a writing request, optionally grounded
// in caller-supplied context.
func EnhanceText(client llm.LLMClient, metrics *observability.EditorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.EnhanceRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		reply, err := client.Generate(c.Request.Context(), prompt.BuildEnhance(req.Prompt, req.Context), enhanceParams)
		metrics.ObserveGeneration(observability.ModeEnhance, time.Since(start).Seconds())
		if err != nil {
			slog.Error("Enhance generation failed", "error", err)
			metrics.RecordError(observability.ModeEnhance)
			c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
			return
		}

		metrics.RecordApplied(observability.ModeEnhance, 1)
		c.JSON(http.StatusOK, datatypes.EnhanceResponse{EnhancedContent: reply})
	}
}

// applyGeneratedPatch runs the shared generate-decode-validate-apply tail
// of the command and format pipelines.
func applyGeneratedPatch(
	c *gin.Context,
	client llm.LLMClient,
	metrics *observability.EditorMetrics,
	mode observability.Mode,
	doc document.Document,
	promptText string,
	params llm.GenerationParams,
) {
	start := time.Now()
	reply, err := client.Generate(c.Request.Context(), promptText, params)
	metrics.ObserveGeneration(mode, time.Since(start).Seconds())
	if err != nil {
		slog.Error("Generation failed", "mode", mode, "error", err)
		metrics.RecordError(mode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
		return
	}

	ops, err := prompt.DecodeReply(reply)
	if err != nil {
		slog.Warn("Model reply did not contain a usable operation batch",
			"mode", mode, "error", err)
		metrics.RecordError(mode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "model returned no usable operations"})
		return
	}

	if verr := patch.Validate(doc, ops); verr != nil {
		slog.Info("Generated batch rejected",
			"mode", mode, "kind", verr.Kind, "operation_index", verr.Index)
		metrics.RecordRejected(mode, string(verr.Kind))
		c.JSON(http.StatusUnprocessableEntity, datatypes.PatchErrorResponse{Error: *verr})
		return
	}

	next, changes, err := patch.Apply(doc, ops)
	if err != nil {
		slog.Error("Validated batch failed to apply", "mode", mode, "error", err)
		metrics.RecordError(mode)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.RecordApplied(mode, len(ops))
	c.JSON(http.StatusOK, datatypes.PatchResponse{Document: next, Changes: changes})
}
