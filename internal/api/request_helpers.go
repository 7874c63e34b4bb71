package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrInvalidID, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", ErrInvalidID, paramName)
	}
	return id, nil
}

// getPathIndex extracts a non-negative integer path parameter.
func getPathIndex(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrMediaMissing, paramName)
	}
	return n, nil
}

// wantsInline reports whether the client asked for media as data URLs.
func wantsInline(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("inline"))
	return err == nil && v
}
