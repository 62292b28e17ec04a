// Package queue holds the walk-in queue model: the per-client lifecycle
// (waiting, in_progress, completed), the dense serve order, and the
// statistics derived from completed appointments.
//
// A Queue is an in-memory view of the live entries. Every mutation returns a
// Change that a persistence adapter applies atomically; the package itself
// performs no I/O.
package queue
