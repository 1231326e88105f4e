// Package transport provides HTTP middleware for the gateway: request
// ID propagation, panic recovery, and structured request logging.
//
// Middleware composes via Chain; the first middleware in the chain is
// the outermost wrapper (executes first on the way in, last on the way
// out). The canonical ordering is Recovery, RequestID, Logging, so that
// panics are caught before anything else and log entries carry the
// request ID.
package transport
