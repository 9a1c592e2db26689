// Package run wires the configured pipeline into a running daemon: logger,
// ring buffer, writer task, hot-plug watcher, companion stream pump, and the
// optional metrics endpoint.
package run
