package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Marker tables, checked in this order. The first table with a hit decides
// the kind. A bare 403 matches none of them and falls through to fatal, while
// a 403 mentioning "overloaded" is transient.
var (
	authMarkers = []string{
		"caller does not have permission",
		MessageCredentialInvalid,
		"API key not valid",
	}
	quotaMarkers = []string{
		"RESOURCE_EXHAUSTED",
		"429",
		"quota exceeded",
		"Quota exceeded",
	}
	// 500 and INTERNAL are treated as transient for parity with the web
	// client. This can hide genuine server-side bugs behind retries.
	transientMarkers = []string{
		"500",
		"502",
		"503",
		"504",
		"overloaded",
		"UNAVAILABLE",
		"INTERNAL",
		"Internal error",
	}
	filterMarkers = []string{
		"Generation blocked",
		"raiMediaFilteredReasons",
		"PROHIBITED_CONTENT",
		"IMAGE_SAFETY",
		"BLOCKLIST",
	}
)

// Classify maps an arbitrary failure value onto a ClassifiedError.
//
// raw may be an error (including genai.APIError), a string, a decoded JSON
// object such as an operation's error field, or anything else. Classify
// never panics; a value it cannot describe is reported as KindFatal.
// An error that already wraps a *ClassifiedError is returned unchanged.
func Classify(raw any) (classified *ClassifiedError) {
	defer func() {
		if r := recover(); r != nil {
			classified = &ClassifiedError{
				Kind:    KindFatal,
				Message: fmt.Sprintf("unclassifiable failure: %v", r),
				Cause:   raw,
			}
		}
	}()

	if raw == nil {
		return &ClassifiedError{Kind: KindFatal, Message: "unknown error"}
	}
	if err, ok := raw.(error); ok {
		var existing *ClassifiedError
		if errors.As(err, &existing) {
			return existing
		}
	}

	msg := describe(raw)
	return &ClassifiedError{
		Kind:    kindOf(raw, msg),
		Message: msg,
		Cause:   raw,
	}
}

func kindOf(raw any, msg string) Kind {
	switch {
	case isSafetyFilter(raw):
		return KindContentFiltered
	case containsAny(msg, authMarkers):
		return KindAuthInvalid
	case containsAny(msg, quotaMarkers):
		return KindQuotaExceeded
	case containsAny(msg, transientMarkers):
		return KindRetryable
	case containsAny(msg, filterMarkers):
		return KindContentFiltered
	default:
		return KindFatal
	}
}

func isSafetyFilter(raw any) bool {
	switch v := raw.(type) {
	case SafetyFilter, *SafetyFilter:
		return true
	case error:
		var filter SafetyFilter
		return errors.As(v, &filter)
	default:
		return false
	}
}

// describe produces the text the marker tables are matched against.
func describe(raw any) string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "unknown error"
		}
		return v
	case genai.APIError:
		return v.Error()
	case *genai.APIError:
		if v == nil {
			return "unknown error"
		}
		return v.Error()
	case map[string]any:
		return describeMap(v)
	case error:
		msg := v.Error()
		if msg == "" {
			return "unknown error"
		}
		return msg
	case fmt.Stringer:
		return v.String()
	default:
		if b, err := json.Marshal(v); err == nil && len(b) > 0 && string(b) != "null" && string(b) != "{}" {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}

// describeMap handles decoded JSON failure bodies of the form
// {"error": {"message", "code", "status"}} or a bare {"message", "code"}.
func describeMap(m map[string]any) string {
	parts := []string{stringField(m, "message"), stringField(m, "code"), stringField(m, "status")}
	if inner, ok := m["error"].(map[string]any); ok {
		parts = append(parts, stringField(inner, "message"), stringField(inner, "code"), stringField(inner, "status"))
	} else if s, ok := m["error"].(string); ok {
		parts = append(parts, s)
	}
	if msg := joinNonEmpty(parts...); msg != "" {
		return msg
	}
	if b, err := json.Marshal(m); err == nil {
		return string(b)
	}
	return "unknown error"
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
