// Package events decouples the HTTP surface from background execution.
//
// The API publishes a GenerationRequested event; task handlers subscribed to
// that type turn it into queued work. Neither side imports the other.
package events
