// Package observability is the parent of the logging, metrics and tracing
// packages shared by cmd/api, cmd/worker and cmd/menuctl. It holds no code.
package observability
