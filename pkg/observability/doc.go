/*
Package observability provides tools for monitoring the structure of a document.

It includes GraphListener implementations that count notifications in Prometheus,
log them through slog, and record them as domain.StructureEvent values that can be
streamed to subscribers (the HTTP adapter serves them over SSE). Lifecycle hooks
time every command.
*/
package observability
