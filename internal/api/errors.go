package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Sniplyy/VibeWall/internal/events"
	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/Sniplyy/VibeWall/internal/task"
	"github.com/go-playground/validator/v10"
)

// Errors raised by request parsing.
var (
	ErrInvalidID    = errors.New("invalid identifier")
	ErrMediaMissing = errors.New("media not found")
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, generation.ErrInvalidRequest),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, ErrMediaMissing):
		return http.StatusNotFound

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrRunnerStopped),
		errors.Is(err, events.ErrNoSubscribers):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, ErrInvalidID):
		return "Invalid generation ID"
	case errors.Is(err, generation.ErrInvalidRequest):
		return "Invalid generation request"
	case errors.Is(err, task.ErrTaskNotFound):
		return "Generation not found"
	case errors.Is(err, ErrMediaMissing):
		return "Media not found"
	case errors.Is(err, task.ErrQueueFull):
		return "Too many generations in progress, please try again shortly"
	case errors.Is(err, task.ErrRunnerStopped):
		return "Server is shutting down"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a short message that
// names the offending field without echoing its value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", jsonFieldName(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	if errors.Is(err, generation.ErrInvalidRequest) {
		// The clause right after the sentinel is written for users; anything
		// after it is decoder detail.
		_, detail, ok := strings.Cut(err.Error(), generation.ErrInvalidRequest.Error()+": ")
		if ok && !strings.HasPrefix(detail, "Key: ") {
			detail, _, _ = strings.Cut(detail, ": ")
			return "Invalid request: " + detail
		}
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "max", "lte":
		return "too large"
	case "min", "gte":
		return "too small"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

var fieldNames = map[string]string{
	"Prompt":          "prompt",
	"Mode":            "mode",
	"AspectRatio":     "aspect_ratio",
	"ImageSize":       "image_size",
	"ReferenceImages": "reference_images",
	"DurationSeconds": "duration_seconds",
	"FPS":             "fps",
	"Variations":      "variations",
}

func jsonFieldName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
