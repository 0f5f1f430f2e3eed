// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package editor

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vriteai/vrite/services/editor/handlers"
	"github.com/vriteai/vrite/services/editor/middleware"
	"github.com/vriteai/vrite/services/editor/observability"
	"github.com/vriteai/vrite/services/llm"
)

// SetupRoutes registers all editor endpoints on the router.
func SetupRoutes(router *gin.Engine, client llm.LLMClient,
	metrics *observability.EditorMetrics, cfg Config) {

	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/health", handlers.HealthCheck())
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// API version 1 group
	v1 := router.Group("/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("/patch", handlers.ApplyPatch(metrics))
			documents.POST("/textdiff", handlers.TextDiff(metrics))
			documents.POST("/command", handlers.RunCommand(client, metrics))
			documents.POST("/format", handlers.FormatDocument(client, metrics))
		}
		v1.POST("/enhance", handlers.EnhanceText(client, metrics))
	}
}
