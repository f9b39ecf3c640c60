package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimedTextURL = "https://www.youtube.com/api/timedtext"

// TimedTextClient implements CaptionProvider against the YouTube timedtext
// endpoint, requesting WEBVTT output.
type TimedTextClient struct {
	baseURL string
	lang    string
	http    *http.Client
}

// TimedTextOption configures a TimedTextClient.
type TimedTextOption func(*TimedTextClient)

// WithTimedTextBaseURL overrides the endpoint (tests, proxies).
func WithTimedTextBaseURL(u string) TimedTextOption {
	return func(c *TimedTextClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimedTextLanguage sets the requested caption language (default "en").
func WithTimedTextLanguage(lang string) TimedTextOption {
	return func(c *TimedTextClient) { c.lang = lang }
}

// NewTimedTextClient creates a caption client.
func NewTimedTextClient(timeout time.Duration, opts ...TimedTextOption) *TimedTextClient {
	c := &TimedTextClient{
		baseURL: defaultTimedTextURL,
		lang:    "en",
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ CaptionProvider = (*TimedTextClient)(nil)

// GetCaptions fetches and parses the video's caption track. A missing or
// empty track returns ErrNoCaptions.
func (c *TimedTextClient) GetCaptions(ctx context.Context, videoID string) ([]Caption, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", c.lang)
	q.Set("fmt", "vtt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating caption request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoCaptions)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading caption body: %w", err)
	}

	captions := ParseVTT(string(body))
	if len(captions) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNoCaptions)
	}
	return captions, nil
}

// FallbackClient implements FallbackProvider against a third-party transcript
// service speaking JSON.
type FallbackClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFallbackClient creates a fallback transcript client for the given
// service endpoint.
func NewFallbackClient(baseURL, apiKey string, timeout time.Duration) *FallbackClient {
	return &FallbackClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ FallbackProvider = (*FallbackClient)(nil)

type fallbackResponse struct {
	Text string `json:"text"`
}

// GetTranscript fetches a plain-text transcript. Non-2xx responses surface
// as ProviderError with the status code.
func (c *FallbackClient) GetTranscript(ctx context.Context, videoID string) (string, error) {
	u := fmt.Sprintf("%s/transcript?video_id=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating transcript request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching transcript: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("reading transcript body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var parsed fallbackResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some deployments return the transcript as raw text.
		return string(body), nil
	}
	return parsed.Text, nil
}
