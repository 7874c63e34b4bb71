// Package task manages background generation jobs: queuing, execution by a
// fixed worker pool, and lifecycle status. HTTP handlers return as soon as a
// job is queued and clients poll for the result.
package task
