// Package blockfs defines the storage surfaces the log pipeline touches.
//
// Device is the raw block interface supplied by the external storage stack.
// Volume and File are the narrow file-level surface the writer task consumes;
// DirVolume implements them over an ordinary OS directory so the daemon and
// tests can stand in for the removable flash filesystem. FlushWindow computes
// block-aligned flush sizing against the flash filesystem's chained-pointer
// layout.
package blockfs
