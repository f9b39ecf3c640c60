// Package errors provides common domain error types for the TasteTrail application.
//
// This package defines sentinel errors for common domain conditions like "not found"
// or "conflict" that can be used across all packages. Using typed errors enables
// consistent error handling patterns with errors.Is() checks.
//
// Usage:
//
//	import tterrors "github.com/tastetrail/tastetrail/pkg/errors"
//
//	// Return a domain error
//	return nil, tterrors.ErrNotFound
//
//	// Check for domain errors
//	if tterrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyProcessed indicates the video has already completed processing.
	// Re-processing requires an explicit admin reset first.
	ErrAlreadyProcessed = errors.New("video already processed")

	// ErrTranscriptUnavailable indicates every transcript source failed for a video.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrEmptyContent indicates a video has no usable text content to extract from.
	ErrEmptyContent = errors.New("no content available")

	// ErrExtractionParse indicates the model output could not be parsed as JSON,
	// even after span-extraction recovery.
	ErrExtractionParse = errors.New("extraction output not parseable")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether any error in err's chain is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsAlreadyExists reports whether any error in err's chain is ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsAlreadyProcessed reports whether any error in err's chain is ErrAlreadyProcessed.
func IsAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}

// IsTranscriptUnavailable reports whether any error in err's chain is ErrTranscriptUnavailable.
func IsTranscriptUnavailable(err error) bool {
	return errors.Is(err, ErrTranscriptUnavailable)
}

// IsEmptyContent reports whether any error in err's chain is ErrEmptyContent.
func IsEmptyContent(err error) bool {
	return errors.Is(err, ErrEmptyContent)
}

// IsExtractionParse reports whether any error in err's chain is ErrExtractionParse.
func IsExtractionParse(err error) bool {
	return errors.Is(err, ErrExtractionParse)
}
