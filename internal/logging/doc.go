// Package logging provides structured logging utilities for tickfewer.
//
// This package centralizes logging patterns so that the unified API layer,
// the upstream clients and the MCP tool handlers all emit the same
// attribute names through the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "create_task")
//	logger.Warn("primary upstream failed, falling back",
//	    logging.Upstream("v2"), logging.Fallback("v1"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("session established",
//	    logging.UserHash(username))
//
// # Security Considerations
//
//   - Usernames are hashed to prevent PII leakage while allowing correlation
//   - Tokens and passwords are never logged directly, only their length
package logging
