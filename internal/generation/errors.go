package generation

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the orchestrator reports.
type Kind int

const (
	// KindFatal covers everything that is neither retried nor user-actionable.
	KindFatal Kind = iota
	// KindAuthInvalid means the configured credential was rejected.
	KindAuthInvalid
	// KindQuotaExceeded means the account ran out of generation quota.
	KindQuotaExceeded
	// KindRetryable means the upstream was overloaded or temporarily failing.
	KindRetryable
	// KindContentFiltered means safety filters blocked the prompt or output.
	KindContentFiltered
)

// String returns the snake_case name used in logs, metrics and API payloads.
func (k Kind) String() string {
	switch k {
	case KindAuthInvalid:
		return "auth_invalid"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindRetryable:
		return "retryable"
	case KindContentFiltered:
		return "content_filtered"
	default:
		return "fatal"
	}
}

// Sentinels matched by errors.Is against a *ClassifiedError of the same kind.
var (
	ErrAuthInvalid     = errors.New("credential invalid")
	ErrQuotaExceeded   = errors.New("generation quota exceeded")
	ErrRetryable       = errors.New("transient upstream failure")
	ErrContentFiltered = errors.New("content blocked by safety filters")
	ErrFatal           = errors.New("generation failed")
)

// Errors that never reach the classifier on their own, but are wrapped by
// the orchestrator before being classified.
var (
	// ErrInvalidRequest is returned when a Request fails validation.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrInvalidConfig is returned when a component is constructed with unusable settings.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrNoMedia is returned when the upstream completed without producing media.
	ErrNoMedia = errors.New("no media returned")

	// ErrPollUnavailable is returned when neither poll channel could report status.
	ErrPollUnavailable = errors.New("unable to poll video status via SDK or REST")
)

// User-facing messages. The credential message doubles as a machine marker
// that clients match on to prompt for a new key.
const (
	MessageCredentialInvalid = "API_KEY_INVALID"
	MessageQuotaExceeded     = "Generation quota exceeded. Please check your plan or try again later."
)

// ClassifiedError is the only failure shape that leaves the orchestrator.
// Build one with Classify.
type ClassifiedError struct {
	Kind Kind
	// Message is the best human-readable description of the failure.
	Message string
	// Cause is the raw failure exactly as received. It may be any value.
	Cause any
	// Attempts is the number of submissions made before giving up. Zero when
	// the error did not come from a retry loop.
	Attempts int
	// Exhausted marks a retryable failure that ran out of attempts.
	Exhausted bool
}

func (e *ClassifiedError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("%s: retries exhausted after %d attempts: %s", e.Kind.sentinel(), e.Attempts, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Message)
}

// Is reports whether target is the sentinel for e's kind.
func (e *ClassifiedError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Unwrap exposes the raw cause when it is itself an error.
func (e *ClassifiedError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// UserMessage is the text shown to the person who asked for the generation.
func (e *ClassifiedError) UserMessage() string {
	switch e.Kind {
	case KindAuthInvalid:
		return MessageCredentialInvalid
	case KindQuotaExceeded:
		return MessageQuotaExceeded
	case KindRetryable:
		if e.Exhausted {
			return fmt.Sprintf("The generation service is busy. Gave up after %d attempts, please try again later.", e.Attempts)
		}
		return "The generation service is temporarily unavailable. Please try again."
	default:
		return e.Message
	}
}

// AsExhausted returns a copy marked as having run out of attempts.
func (e *ClassifiedError) AsExhausted(attempts int) *ClassifiedError {
	c := *e
	c.Exhausted = true
	c.Attempts = attempts
	return &c
}

// AsFatal returns a copy demoted to KindFatal, keeping message and cause.
func (e *ClassifiedError) AsFatal() *ClassifiedError {
	c := *e
	c.Kind = KindFatal
	c.Exhausted = false
	return &c
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthInvalid:
		return ErrAuthInvalid
	case KindQuotaExceeded:
		return ErrQuotaExceeded
	case KindRetryable:
		return ErrRetryable
	case KindContentFiltered:
		return ErrContentFiltered
	default:
		return ErrFatal
	}
}

// SafetyFilter is raised when the upstream reports that safety filters
// removed the output. Reason is the upstream's reason code or text.
type SafetyFilter struct {
	Reason string
}

func (f SafetyFilter) Error() string {
	if f.Reason == "" {
		return "Generation blocked by safety filters"
	}
	return "Generation blocked: " + f.Reason
}
