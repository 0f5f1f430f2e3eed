// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vriteai/vrite/pkg/logging"
	"github.com/vriteai/vrite/services/editor"
	"github.com/vriteai/vrite/services/editor/document"
	"github.com/vriteai/vrite/services/editor/patch"
	"github.com/vriteai/vrite/services/editor/textdiff"
)

// --- Global Command Variables ---
var (
	configPath      string
	serveBackend    string
	servePort       int
	applyDocPath    string
	applyOpsPath    string
	diffContent     string
	diffPairsPath   string
	strictAmbiguity bool

	rootCmd = &cobra.Command{
		Use:   "vrite",
		Short: "A cli to serve and drive the Vrite document patch engine",
		Long: `Vrite turns structured edit operations into document changes.
The serve command runs the HTTP API; apply and textdiff run the
engine against local files without a server.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the editor HTTP server",
		RunE:  runServe,
	}

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Validate and apply an operation batch to a document snapshot",
		RunE:  runApply,
	}

	textdiffCmd = &cobra.Command{
		Use:   "textdiff",
		Short: "Apply exact-text replacement pairs to flat content",
		RunE:  runTextDiff,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml",
		"Path to the optional YAML config file")

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config)")
	serveCmd.Flags().StringVar(&serveBackend, "backend", "", "LLM backend (overrides config)")

	applyCmd.Flags().StringVar(&applyDocPath, "document", "", "Path to the document snapshot JSON")
	applyCmd.Flags().StringVar(&applyOpsPath, "operations", "", "Path to the operation batch JSON")
	_ = applyCmd.MarkFlagRequired("document")
	_ = applyCmd.MarkFlagRequired("operations")

	textdiffCmd.Flags().StringVar(&diffContent, "content", "", "Path to the content file")
	textdiffCmd.Flags().StringVar(&diffPairsPath, "pairs", "", "Path to the replacement pairs JSON")
	textdiffCmd.Flags().BoolVar(&strictAmbiguity, "strict", false,
		"Skip ambiguous pairs instead of replacing the first occurrence")
	_ = textdiffCmd.MarkFlagRequired("content")
	_ = textdiffCmd.MarkFlagRequired("pairs")

	rootCmd.AddCommand(serveCmd, applyCmd, textdiffCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveBackend != "" {
		cfg.LLMBackend = serveBackend
	}

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  cfg.LogDir,
		Service: "editor",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	svc, err := editor.New(editor.Config{
		Port:           cfg.Port,
		LLMBackend:     cfg.LLMBackend,
		AllowedOrigins: cfg.AllowedOrigins,
		OTelEndpoint:   cfg.OTelEndpoint,
		EnableMetrics:  true,
		GinMode:        cfg.GinMode,
	})
	if err != nil {
		return fmt.Errorf("create editor service: %w", err)
	}

	return svc.Run()
}

func runApply(cmd *cobra.Command, args []string) error {
	var doc document.Document
	if err := readJSONFile(applyDocPath, &doc); err != nil {
		return err
	}
	var wire []patch.WireOperation
	if err := readJSONFile(applyOpsPath, &wire); err != nil {
		return err
	}

	ops, verr := patch.Decode(wire)
	if verr == nil {
		verr = patch.Validate(doc, ops)
	}
	if verr != nil {
		return fmt.Errorf("batch rejected at operation %d: %s", verr.Index, verr.Error())
	}

	next, changes, err := patch.Apply(doc, ops)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"document": next,
		"changes":  changes,
	})
}

func runTextDiff(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(diffContent)
	if err != nil {
		return fmt.Errorf("read %s: %w", diffContent, err)
	}
	var pairs []textdiff.Pair
	if err := readJSONFile(diffPairsPath, &pairs); err != nil {
		return err
	}

	result := textdiff.Replace(string(content), pairs, textdiff.Options{
		StrictAmbiguity: strictAmbiguity,
	})

	return writeJSON(cmd.OutOrStdout(), result)
}

// readJSONFile decodes the JSON file at path into v.
func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeJSON pretty-prints v for terminal consumption.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
