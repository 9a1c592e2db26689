// Package ringbuf implements the fixed-capacity circular byte store that
// absorbs telemetry records from concurrent producers.
//
// Producers never block: a record that does not fit is dropped whole and
// counted. Two framings share the one buffer. The word path packs a combined
// tag/length byte plus one to three payload bytes into a single machine word,
// mirroring the interrupt-context entry point of the source hardware. The
// task path writes an explicit tag byte followed by its payload.
//
// A single consumer drains committed bytes and frees space with Commit; the
// read cursor is published atomically so producers compute free space without
// taking the consumer's path.
package ringbuf
