// Package orchestrator drives generation jobs against the upstream Gemini
// service: the image runner retries transient failures with backoff, the
// video runner submits and polls a long-running operation, and the
// coordinator fans image requests out into staggered variation lanes.
//
// Every failure returned from this package is a *generation.ClassifiedError.
package orchestrator
