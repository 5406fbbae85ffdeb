package services

import (
	"errors"
	"fmt"
	"strings"
)

// Taxonomy sentinels. Every failure leaving a dispatcher is tagged with
// exactly one of these so callers can classify it with errors.Is.
var (
	// ErrBackendUnavailable marks an unreachable or timed-out backend.
	// Retryable by caller policy; dispatchers never retry in place.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedOutput marks a backend response that could not be
	// interpreted. Not retryable without changing the input.
	ErrMalformedOutput = errors.New("malformed backend output")
	// ErrSchemaViolation marks a document that failed structural
	// validation. Always surfaced with field paths, never auto-corrected.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrUnknownContentKind marks content whose kind could not be
	// determined or is unsupported.
	ErrUnknownContentKind = errors.New("unknown content kind")
	// ErrDanglingReference marks an index entry pointing at a missing
	// document.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrRoleVocabularyMismatch marks a blueprint role outside the
	// story type's fixed vocabulary.
	ErrRoleVocabularyMismatch = errors.New("role vocabulary mismatch")

	// ErrValidation marks bad operator input (flags, file paths).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error that includes component context while tagging it
// with the provided taxonomy marker for later classification.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrBackendUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind names the taxonomy class of an error for the result envelope.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_backend_output"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrUnknownContentKind):
		return "unknown_content_kind"
	case errors.Is(err, ErrDanglingReference):
		return "dangling_reference"
	case errors.Is(err, ErrRoleVocabularyMismatch):
		return "role_vocabulary_mismatch"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

// Retryable reports whether caller policy may retry the failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
