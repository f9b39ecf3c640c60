package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a classified pipeline error.
type ErrorCode string

const (
	ErrCodeTimeout               ErrorCode = "timeout"
	ErrCodeRateLimit             ErrorCode = "rate_limit"
	ErrCodeProviderUnavailable   ErrorCode = "provider_unavailable"
	ErrCodeContextCancelled      ErrorCode = "context_cancelled"
	ErrCodeParseError            ErrorCode = "extraction_parse"
	ErrCodeEmptyContent          ErrorCode = "empty_content"
	ErrCodeTranscriptUnavailable ErrorCode = "transcript_unavailable"
	ErrCodeCandidatePersist      ErrorCode = "candidate_persist"
	ErrCodeProcessingError       ErrorCode = "processing_error"
)

// CodeInfo describes the handling characteristics of an error code.
type CodeInfo struct {
	// Retryable reports whether re-running the video is likely to succeed.
	Retryable bool

	// Description is a short operator-facing explanation.
	Description string
}

// ErrorCodeRegistry maps every pipeline error code to its handling characteristics.
var ErrorCodeRegistry = map[ErrorCode]CodeInfo{
	ErrCodeTimeout:               {Retryable: true, Description: "an external call exceeded its deadline"},
	ErrCodeRateLimit:             {Retryable: true, Description: "an external provider rejected the call with a rate limit"},
	ErrCodeProviderUnavailable:   {Retryable: true, Description: "an external provider was unreachable"},
	ErrCodeContextCancelled:      {Retryable: true, Description: "the batch was cancelled before the video finished"},
	ErrCodeParseError:            {Retryable: false, Description: "the model output was not valid JSON"},
	ErrCodeEmptyContent:          {Retryable: false, Description: "the video has no transcript and no description text"},
	ErrCodeTranscriptUnavailable: {Retryable: true, Description: "every transcript source failed"},
	ErrCodeCandidatePersist:      {Retryable: true, Description: "a single candidate failed to persist"},
	ErrCodeProcessingError:       {Retryable: false, Description: "an unclassified processing failure"},
}

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code    ErrorCode
	Stage   string
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError builds a PipelineError with an explicit code.
func NewPipelineError(code ErrorCode, stage string, cause error) *PipelineError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &PipelineError{Code: code, Stage: stage, Message: msg, Cause: cause}
}

// ClassifyError inspects an error and returns a *PipelineError with the appropriate code.
// If the error doesn't match any known pattern, it returns a PipelineError with
// ErrCodeProcessingError.
func ClassifyError(err error, stage string) *PipelineError {
	if err == nil {
		return nil
	}

	pe := &PipelineError{
		Stage:   stage,
		Message: err.Error(),
		Cause:   err,
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		pe.Code = ErrCodeTimeout
		pe.Message = "operation timed out"
		return pe
	case errors.Is(err, context.Canceled):
		pe.Code = ErrCodeContextCancelled
		pe.Message = "operation cancelled"
		return pe
	case errors.Is(err, ErrEmptyContent):
		pe.Code = ErrCodeEmptyContent
		return pe
	case errors.Is(err, ErrExtractionParse):
		pe.Code = ErrCodeParseError
		return pe
	case errors.Is(err, ErrTranscriptUnavailable):
		pe.Code = ErrCodeTranscriptUnavailable
		return pe
	}

	lower := strings.ToLower(err.Error())

	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") ||
		strings.Contains(lower, "too many requests") || strings.Contains(lower, "quota exceeded") {
		pe.Code = ErrCodeRateLimit
		return pe
	}

	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "no such host") {
		pe.Code = ErrCodeProviderUnavailable
		return pe
	}

	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline") {
		pe.Code = ErrCodeTimeout
		return pe
	}

	pe.Code = ErrCodeProcessingError
	return pe
}

// IsErrorRetryable returns true if the error is likely transient and worth retrying.
// This function checks the error code using the ErrorCodeRegistry.
func IsErrorRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		if info, ok := ErrorCodeRegistry[pe.Code]; ok {
			return info.Retryable
		}
		return false
	}
	return false
}
