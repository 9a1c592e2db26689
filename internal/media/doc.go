// Package media bridges storage hot-plug events to the writer task.
//
// Bridge holds the current volume handle: the hot-plug side publishes it with
// OnMediaReady and clears it with OnMediaRemoved, and the writer observes it
// once per loop iteration. Watcher is the daemon's hot-plug manager glue: a
// poll loop that mounts a directory-backed volume when the mount path
// appears and clears it when the path goes away.
package media
