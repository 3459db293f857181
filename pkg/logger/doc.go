// Package logger builds *slog.Logger instances with a small set of functional
// options and provides attribute helpers so every package names its log fields
// the same way.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "fanout"),
//	    logger.WithContextValue("run_id", runIDKey{}),
//	)
//	log.Info("operation completed",
//	    logger.OperationID(3),
//	    logger.Duration(elapsed),
//	    logger.Error(err),
//	)
//
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally. Discard returns a logger that drops everything; library
// packages default to it.
package logger
