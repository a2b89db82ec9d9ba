// Package logger provides a structured logging facility based on Zap.
//
// New builds a development logger for the debug level and a production logger
// otherwise, encoded as colored console output or JSON.
//
// # Context Awareness
//
// WithRayID extracts the ray id set by the rayid middleware from a Fiber context
// and attaches it to the logger, so every log line of one request can be
// correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Reconciliation finished", zap.Int("identities", n))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Upload rejected", zap.Error(err))
package logger
