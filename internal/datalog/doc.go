// Package datalog composes the ring buffer, the storage lifecycle bridge,
// and the writer task into the process-wide telemetry logger.
//
// One Logger is constructed explicitly at startup and passed by handle to
// every subsystem that logs; there is no implicit global and no teardown
// path. Producers call LogWord (the interrupt-context framing) or Log (the
// task-context framing); both reject immediately when the buffer is full.
package datalog
