// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for development (console) or
// production (json) output, optionally written to a file.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the
// log entry so all logs of one HTTP request can be correlated. WithPass does
// the same for a scheduler pass (pass kind and pass id).
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//   - Output: optional log file path
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
