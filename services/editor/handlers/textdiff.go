// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vriteai/vrite/services/editor/datatypes"
	"github.com/vriteai/vrite/services/editor/observability"
	"github.com/vriteai/vrite/services/editor/textdiff"
)

// TextDiff applies legacy exact-text replacement pairs to flat content.
//
// # Description
//
// Pairs are applied in order; pairs that cannot be resolved are reported
// in the response's skipped list rather than aborting the batch, so the
// endpoint always returns 200 for a well-formed request.
func TextDiff(metrics *observability.EditorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.TextDiffRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res := textdiff.Replace(req.Content, req.Pairs, textdiff.Options{})

		for range res.Changes {
			metrics.RecordTextPair("applied")
		}
		for _, s := range res.Skipped {
			metrics.RecordTextPair(string(s.Reason))
		}
		metrics.RecordApplied(observability.ModeTextDiff, len(res.Changes))

		c.JSON(http.StatusOK, datatypes.TextDiffResponse{
			Content: res.Content,
			Changes: res.Changes,
			Skipped: res.Skipped,
		})
	}
}
