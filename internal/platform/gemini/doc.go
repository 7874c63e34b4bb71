// Package gemini adapts Google's Gemini and Veo APIs to the generation ports.
//
// Client wraps the google.golang.org/genai SDK and implements image
// generation, video submission and the primary operation poll, the latter
// behind a circuit breaker. RESTClient talks to the REST surface directly
// and implements the fallback poll channel and the authenticated video
// download. Both translate upstream shapes into generation types and leave
// failure classification to the orchestrator.
package gemini
