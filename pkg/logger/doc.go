// Package logger provides structured logging with context extraction and Sentry integration.
//
// It builds a log/slog logger from [Config]: level and format come from
// LOG_LEVEL and LOG_FORMAT, and records are additionally forwarded to Sentry
// when SENTRY_DSN is set. Errors become Sentry issues; warnings are stored
// as Sentry logs unless SENTRY_MIN_LEVEL is "error".
//
// # Usage
//
//	log := logger.New(cfg.Log, logger.RequestID)
//	log.InfoContext(ctx, "cache cleared", slog.Int("entries", n))
//	// {"level":"INFO","msg":"cache cleared","entries":12,"request_id":"host/abc-000001"}
//
// # Context Extractors
//
// A [ContextExtractor] pulls a request-scoped attribute out of the logging
// context. Extractors run on every call, so values are always current.
// [RequestID] reads the id that chi's middleware.RequestID stores.
//
// [Decorate] applies extractors to any slog.Handler.
//
// # Shutdown
//
// Buffered Sentry events are delivered by [Flush]:
//
//	defer logger.Flush(2 * time.Second)(ctx)
package logger
