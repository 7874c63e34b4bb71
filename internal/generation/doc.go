// Package generation holds the domain model of a wallpaper generation: the
// request a user submits, the media the upstream Gemini service returns, and
// the ports the orchestrator drives to reach that service.
//
// It also owns failure classification. Every failure that leaves the
// orchestrator is a *ClassifiedError produced by Classify, so callers can
// branch on Kind (or errors.Is against the sentinels) without inspecting
// upstream message text themselves.
package generation
