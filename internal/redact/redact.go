// Package redact scrubs credentials from strings before they are logged or
// returned to API clients. The Gemini credential travels in URL query
// strings and request headers, so upstream error text (for example a
// *url.Error from the REST poller) can echo it back verbatim.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern *regexp.Regexp
	// replacement may reference capture groups, e.g. "${1}".
	replacement string
}

// Applied in order. Earlier rules see the raw input.
var rules = []rule{
	{
		// ?key=... or &key=... in URLs, the REST fallback's auth scheme.
		pattern:     regexp.MustCompile(`(?i)([?&](?:key|api_key|apikey|access_token)=)[^&\s"'#]+`),
		replacement: "${1}" + RedactedKeyPlaceholder,
	},
	{
		// Google API keys appear anywhere: headers, dumps, config echoes.
		pattern:     regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		replacement: RedactedKeyPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		replacement: RedactedJWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(x-goog-api-key|authorization)(["'\s:=]+)(bearer\s+)?[A-Za-z0-9_\-.~+/=]{8,}`),
		replacement: "${1}${2}${3}" + RedactedCredentialPlaceholder,
	},
	{
		// api_key: value, secret=value, token "value". The separator class
		// excludes '_' so markers like API_KEY_INVALID survive.
		pattern:     regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)(["'\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		replacement: "${1}${2}" + RedactedKeyPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: RedactedEmailPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		replacement: RedactedStackPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
