// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package editor provides the document patch service for Vrite.
//
// This package contains the main service type that coordinates all
// components: HTTP routing, the patch engine, LLM clients, and
// observability infrastructure. The engine packages underneath
// (document, patch, textdiff) are pure and usable as a library; this
// package is only the serving shell around them.
//
// # Usage
//
//	cfg := editor.Config{Port: 8000, LLMBackend: "openai"}
//	svc, err := editor.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vriteai/vrite/services/editor/observability"
	"github.com/vriteai/vrite/services/llm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the editor service.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds editor service configuration options.
//
// # Description
//
// Config centralizes all configuration for the editor service. Values can
// be populated from environment variables, config files, or
// programmatically for testing. All fields have defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 8000
	Port int

	// LLMBackend specifies the LLM provider.
	// Valid values: "openai", "ollama", "stub"
	// Default: "openai"
	LLMBackend string

	// AllowedOrigins lists the CORS origins.
	// Default: http://localhost:3000
	AllowedOrigins []string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// If empty, tracing is disabled.
	OTelEndpoint string

	// EnableMetrics enables the Prometheus /metrics endpoint and
	// registration against the default registry.
	EnableMetrics bool

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	GinMode string
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns.
type service struct {
	config        Config
	router        *gin.Engine
	llmClient     llm.LLMClient
	metrics       *observability.EditorMetrics
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new editor Service with the given configuration.
//
// # Description
//
// New initializes all service components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing when an endpoint is configured
//  3. Initializes Prometheus metrics
//  4. Creates the LLM client for the configured backend
//  5. Sets up HTTP routes
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//
// # Outputs
//
//   - Service: Ready-to-run editor service
//   - error: Non-nil if initialization fails
//
// # Assumptions
//
//   - Environment variables are set for the chosen LLM provider
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	if s.config.OTelEndpoint != "" {
		cleanup, err := s.initTracer()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	if s.config.EnableMetrics {
		s.metrics = observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics for the editor")
	} else {
		// Metrics still flow through the handlers; they just stay off
		// the default registry and the /metrics endpoint.
		s.metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting editor server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "openai"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// # Limitations
//
//   - Uses an insecure gRPC connection (appropriate for internal networks)
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("editor-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initLLMClient initializes the LLM provider client.
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI LLM backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama LLM backend")
	case "stub":
		s.llmClient = &llm.StubClient{}
		slog.Info("Using stub LLM backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to openai", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewOpenAIClient()
	}

	return err
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("editor-service"))

	SetupRoutes(s.router, s.llmClient, s.metrics, s.config)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}
