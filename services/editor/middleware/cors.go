// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the editor service.
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// DefaultAllowedOrigin is the origin permitted when no explicit list is
// configured. It matches the local development frontend.
const DefaultAllowedOrigin = "http://localhost:3000"

// CORS returns middleware that answers cross-origin requests from the
// configured origins.
//
// # Description
//
// Reflects the request Origin header when it is in allowedOrigins, attaches
// the standard CORS headers, and short-circuits preflight OPTIONS requests
// with 204. Requests from unlisted origins pass through without CORS
// headers; the browser enforces the block.
//
// # Inputs
//
//   - allowedOrigins: Origins to accept. Empty list falls back to
//     DefaultAllowedOrigin.
//
// # Outputs
//
//   - gin.HandlerFunc: The configured middleware.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{DefaultAllowedOrigin}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
