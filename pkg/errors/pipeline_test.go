package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "cancelled",
			err:      context.Canceled,
			wantCode: ErrCodeContextCancelled,
		},
		{
			name:     "empty content sentinel",
			err:      fmt.Errorf("step failed: %w", ErrEmptyContent),
			wantCode: ErrCodeEmptyContent,
		},
		{
			name:     "parse sentinel",
			err:      fmt.Errorf("extract: %w", ErrExtractionParse),
			wantCode: ErrCodeParseError,
		},
		{
			name:     "transcript sentinel",
			err:      fmt.Errorf("acquire: %w", ErrTranscriptUnavailable),
			wantCode: ErrCodeTranscriptUnavailable,
		},
		{
			name:     "rate limit by message",
			err:      errors.New("llm endpoint returned 429 too many requests"),
			wantCode: ErrCodeRateLimit,
		},
		{
			name:     "provider unavailable by message",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: ErrCodeProviderUnavailable,
		},
		{
			name:     "timeout by message",
			err:      errors.New("request timeout while awaiting headers"),
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "unclassified",
			err:      errors.New("something odd happened"),
			wantCode: ErrCodeProcessingError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := ClassifyError(tt.err, "extract")
			require.NotNil(t, pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, "extract", pe.Stage)
			assert.ErrorIs(t, pe, tt.err)
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil, "any"))
}

func TestIsErrorRetryable(t *testing.T) {
	retryable := ClassifyError(errors.New("429 too many requests"), "extract")
	assert.True(t, IsErrorRetryable(retryable))

	permanent := ClassifyError(fmt.Errorf("bad output: %w", ErrExtractionParse), "extract")
	assert.False(t, IsErrorRetryable(permanent))

	// Plain errors without a PipelineError in the chain are not retryable.
	assert.False(t, IsErrorRetryable(errors.New("429")))
}

func TestSentinelHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrAlreadyProcessed)
	assert.True(t, IsAlreadyProcessed(wrapped))
	assert.False(t, IsAlreadyProcessed(errors.New("other")))

	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.True(t, IsEmptyContent(fmt.Errorf("x: %w", ErrEmptyContent)))
}

func TestErrorCodeRegistry_CoversAllCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeTimeout, ErrCodeRateLimit, ErrCodeProviderUnavailable,
		ErrCodeContextCancelled, ErrCodeParseError, ErrCodeEmptyContent,
		ErrCodeTranscriptUnavailable, ErrCodeCandidatePersist, ErrCodeProcessingError,
	}
	for _, code := range codes {
		_, ok := ErrorCodeRegistry[code]
		assert.True(t, ok, "missing registry entry for %s", code)
	}
}
