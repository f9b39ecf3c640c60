package transcripts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
	"github.com/tastetrail/tastetrail/pkg/logging"
)

type fakeCaptionProvider struct {
	captions []Caption
	err      error
}

func (f *fakeCaptionProvider) GetCaptions(_ context.Context, _ string) ([]Caption, error) {
	return f.captions, f.err
}

type fakeFallbackProvider struct {
	text string
	err  error
}

func (f *fakeFallbackProvider) GetTranscript(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func longText() string {
	return strings.Repeat("I went to a wonderful restaurant and the food was great. ", 3)
}

func TestAcquire_PrimarySucceeds(t *testing.T) {
	primary := &fakeCaptionProvider{captions: []Caption{
		{Text: "I went to Pasta House in Rome", OffsetMillis: 12000},
		{Text: "the carbonara was amazing, truly the best I have had anywhere", OffsetMillis: 15500},
	}}
	fallback := &fakeFallbackProvider{err: errors.New("should not be called")}

	a := NewAcquirer(primary, fallback, logging.NewNopLogger())
	tr, err := a.Acquire(context.Background(), "vid1")
	require.NoError(t, err)

	assert.Equal(t, SourceCaptions, tr.Source)
	assert.Contains(t, tr.Text, "Pasta House")
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, 12.0, tr.Segments[0].Offset)
	assert.Equal(t, 15.5, tr.Segments[1].Offset)
}

func TestAcquire_ShortCaptionsFallThrough(t *testing.T) {
	primary := &fakeCaptionProvider{captions: []Caption{{Text: "hi", OffsetMillis: 0}}}
	fallback := &fakeFallbackProvider{text: longText()}

	a := NewAcquirer(primary, fallback, logging.NewNopLogger())
	tr, err := a.Acquire(context.Background(), "vid1")
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, tr.Source)
	assert.Nil(t, tr.Segments)
}

func TestAcquire_PrimaryErrorUsesFallback(t *testing.T) {
	primary := &fakeCaptionProvider{err: ErrNoCaptions}
	fallback := &fakeFallbackProvider{text: longText()}

	a := NewAcquirer(primary, fallback, logging.NewNopLogger())
	tr, err := a.Acquire(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, tr.Source)
}

func TestAcquire_BothFail(t *testing.T) {
	primary := &fakeCaptionProvider{err: ErrNoCaptions}
	fallback := &fakeFallbackProvider{err: &ProviderError{StatusCode: 503, Message: "unavailable"}}

	a := NewAcquirer(primary, fallback, logging.NewNopLogger())
	_, err := a.Acquire(context.Background(), "vid1")
	require.Error(t, err)

	assert.True(t, errors.Is(err, tterrors.ErrTranscriptUnavailable))
	// Combined error names both failure reasons.
	assert.Contains(t, err.Error(), "no captions")
	assert.Contains(t, err.Error(), "503")
}

func TestAcquire_FallbackTextTooShort(t *testing.T) {
	primary := &fakeCaptionProvider{err: ErrNoCaptions}
	fallback := &fakeFallbackProvider{text: "too short"}

	a := NewAcquirer(primary, fallback, logging.NewNopLogger())
	_, err := a.Acquire(context.Background(), "vid1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tterrors.ErrTranscriptUnavailable))
}

func TestAcquire_NoProvidersConfigured(t *testing.T) {
	a := NewAcquirer(nil, nil, logging.NewNopLogger())
	_, err := a.Acquire(context.Background(), "vid1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tterrors.ErrTranscriptUnavailable))
}
