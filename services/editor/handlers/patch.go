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

	"github.com/gin-gonic/gin"
	"github.com/vriteai/vrite/services/editor/datatypes"
	"github.com/vriteai/vrite/services/editor/observability"
	"github.com/vriteai/vrite/services/editor/patch"
)

// ApplyPatch validates and applies a structured operation batch.
//
// # Description
//
// Runs the full patch pipeline: request caps, optional base-version check,
// wire decode, sequential validation, then application. Rejections carry
// the failure kind and the index of the first bad operation; the caller's
// snapshot is never partially modified.
//
// # Responses
//
//   - 200: PatchResponse with the new snapshot and change log.
//   - 400: Malformed body or cap breach.
//   - 409: baseVersion does not match the snapshot.
//   - 422: The batch failed validation.
func ApplyPatch(metrics *observability.EditorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.PatchRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.BaseVersion != nil {
			if verr := patch.CheckBaseVersion(req.Document, *req.BaseVersion); verr != nil {
				metrics.RecordRejected(observability.ModePatch, string(verr.Kind))
				c.JSON(http.StatusConflict, datatypes.PatchErrorResponse{Error: *verr})
				return
			}
		}

		ops, verr := patch.Decode(req.Operations)
		if verr == nil {
			verr = patch.Validate(req.Document, ops)
		}
		if verr != nil {
			slog.Info("Patch batch rejected",
				"kind", verr.Kind, "operation_index", verr.Index)
			metrics.RecordRejected(observability.ModePatch, string(verr.Kind))
			c.JSON(http.StatusUnprocessableEntity, datatypes.PatchErrorResponse{Error: *verr})
			return
		}

		next, changes, err := patch.Apply(req.Document, ops)
		if err != nil {
			slog.Error("Validated batch failed to apply", "error", err)
			metrics.RecordError(observability.ModePatch)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		metrics.RecordApplied(observability.ModePatch, len(ops))
		c.JSON(http.StatusOK, datatypes.PatchResponse{Document: next, Changes: changes})
	}
}
