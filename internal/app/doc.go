// Package app assembles the generation pipeline from configuration: the
// Gemini transports, the image and video runners, the variation
// coordinator, the background task runner and the HTTP router. Both the
// server binary and the CLI build on it.
package app
