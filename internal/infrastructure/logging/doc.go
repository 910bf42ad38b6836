// Package logging provides structured logging for Bookshelf.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text during development, with service and version attached
// to each entry.
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("book created", "id", 4)
//
// Never log secrets, tokens or passwords.
package logging
