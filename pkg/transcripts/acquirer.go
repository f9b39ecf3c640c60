package transcripts

import (
	"context"
	"fmt"
	"strings"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
	"github.com/tastetrail/tastetrail/pkg/logging"
)

// minUsableLength is the trimmed-text threshold below which a source's output
// is treated as a failure and the next source is tried.
const minUsableLength = 50

// CaptionProvider fetches the caption track for a video. The primary source.
type CaptionProvider interface {
	GetCaptions(ctx context.Context, videoID string) ([]Caption, error)
}

// FallbackProvider fetches a plain-text transcript when captions fail. Its
// output format does not preserve per-caption timing.
type FallbackProvider interface {
	GetTranscript(ctx context.Context, videoID string) (string, error)
}

// Acquirer obtains a transcript for a video id, trying the primary captioning
// source first and falling back to the secondary provider. Falling back
// further to the video description is the caller's policy, not handled here.
type Acquirer struct {
	primary  CaptionProvider
	fallback FallbackProvider
	log      logging.Logger
}

// NewAcquirer creates a transcript acquirer. Either provider may be nil, in
// which case that tier is skipped.
func NewAcquirer(primary CaptionProvider, fallback FallbackProvider, log logging.Logger) *Acquirer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Acquirer{primary: primary, fallback: fallback, log: log}
}

// Acquire returns the first usable transcript, or an error wrapping
// ErrTranscriptUnavailable that names both failure reasons when every source
// fails. Only the primary source yields timestamped segments.
func (a *Acquirer) Acquire(ctx context.Context, videoID string) (*Transcript, error) {
	var primaryErr, fallbackErr error

	if a.primary != nil {
		captions, err := a.primary.GetCaptions(ctx, videoID)
		if err != nil {
			primaryErr = err
		} else {
			t := transcriptFromCaptions(captions)
			if usable(t.Text) {
				return t, nil
			}
			primaryErr = fmt.Errorf("caption text too short (%d chars)", len(strings.TrimSpace(t.Text)))
		}
		a.log.Debug("primary caption source failed",
			logging.F("video_id", videoID),
			logging.Err(primaryErr))
	} else {
		primaryErr = fmt.Errorf("no caption provider configured")
	}

	if a.fallback != nil {
		text, err := a.fallback.GetTranscript(ctx, videoID)
		if err != nil {
			fallbackErr = err
		} else if usable(text) {
			return &Transcript{Text: strings.TrimSpace(text), Source: SourceFallback}, nil
		} else {
			fallbackErr = fmt.Errorf("fallback text too short (%d chars)", len(strings.TrimSpace(text)))
		}
		a.log.Debug("fallback transcript source failed",
			logging.F("video_id", videoID),
			logging.Err(fallbackErr))
	} else {
		fallbackErr = fmt.Errorf("no fallback provider configured")
	}

	return nil, fmt.Errorf("all transcript sources failed for %s (primary: %v; fallback: %v): %w",
		videoID, primaryErr, fallbackErr, tterrors.ErrTranscriptUnavailable)
}

func usable(text string) bool {
	return len(strings.TrimSpace(text)) > minUsableLength
}

func transcriptFromCaptions(captions []Caption) *Transcript {
	segments := make([]Segment, 0, len(captions))
	var b strings.Builder
	for i, c := range captions {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		segments = append(segments, Segment{
			Text:   text,
			Offset: float64(c.OffsetMillis) / 1000,
		})
	}
	return &Transcript{Text: b.String(), Segments: segments, Source: SourceCaptions}
}
