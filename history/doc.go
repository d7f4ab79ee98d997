// Package history provides fire-and-forget recording of successful AI
// results.
//
// The persistent store behind the Recorder interface (a relational history
// repository in the backend) is an external collaborator. This package
// contributes the decoupling: AsyncRecorder hands entries to a bounded
// queue drained by a fixed worker pool, so a slow or failing history store
// can never slow down or fail a user-visible request. A full queue drops
// the entry; Shutdown drains what was accepted.
package history
