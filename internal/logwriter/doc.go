// Package logwriter drains the ring buffer to removable storage.
//
// The Task is a perpetual supervisory loop over six states: it waits for
// media, opens a sequentially-named log file, computes a block-aligned flush
// window, accumulates that many bytes, writes them durably, and on any device
// error abandons the file and starts a fresh one. Media removal preempts
// every other check. The transition function is pure and testable without a
// device, scheduler, or timer; the Task derives events from its environment
// and executes the effects.
package logwriter
