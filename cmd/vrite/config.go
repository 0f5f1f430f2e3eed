// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the optional config.yaml file. Environment variables
// override file values; flags override both.
type Config struct {
	Port           int      `yaml:"port"`
	LLMBackend     string   `yaml:"llm_backend"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	OTelEndpoint   string   `yaml:"otel_endpoint"`
	LogDir         string   `yaml:"log_dir"`
	GinMode        string   `yaml:"gin_mode"`
}

// loadConfig reads path when it exists and layers environment variables
// on top. A missing file is not an error; everything has a default.
func loadConfig(path string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fine, run on env and defaults.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if v := getEnvInt("VRITE_PORT", 0); v != 0 {
		cfg.Port = v
	}
	if v := os.Getenv("LLM_BACKEND_TYPE"); v != "" {
		cfg.LLMBackend = v
	}
	if v := os.Getenv("VRITE_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitOrigins(v)
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTelEndpoint = v
	}
	if v := os.Getenv("VRITE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	return cfg, nil
}

// splitOrigins parses a comma-separated origin list, dropping empties.
func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvInt returns the environment variable parsed as int, or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
