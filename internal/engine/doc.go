// Package engine aggregates every configuration surface of a project into
// one Snapshot.
//
// An Engine owns the write gate, the plugin discoverer and the change
// watcher. Each ScanConfig call reads all surfaces from disk concurrently
// and returns an immutable result; there is no cache between scans.
package engine
