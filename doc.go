// Package trackingleads provides the lead/email-engagement tracking API.

// This package contains no code of its own; the service is organized into
// subpackages:

// - internal/tracking: event recording and lead-state reconciliation
// - internal/handlers: HTTP request handlers for all endpoints
// - internal/models: Data models and database schemas
// - internal/repository: Transactional storage operations
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (request ids, metrics, rate limiting)
// - internal/metrics: Prometheus metrics
// - internal/telemetry: OpenTelemetry tracing
// - internal/cache: Redis client for the rate limiter
// - internal/seed: Development data seeding

// See the individual package documentation for detailed reference.
package trackingleads
