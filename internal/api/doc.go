// Package api exposes the generation orchestrator over HTTP. Requests are
// accepted asynchronously: POST returns a task ID and clients poll GET
// until the task reaches a terminal status.
package api
