package videos

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

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeClient implements MetadataProvider against the YouTube Data API v3.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// YouTubeClientOption configures a YouTubeClient.
type YouTubeClientOption func(*YouTubeClient)

// WithYouTubeBaseURL overrides the API base URL (tests, proxies).
func WithYouTubeBaseURL(u string) YouTubeClientOption {
	return func(c *YouTubeClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithYouTubeHTTPClient overrides the HTTP client.
func WithYouTubeHTTPClient(hc *http.Client) YouTubeClientOption {
	return func(c *YouTubeClient) { c.http = hc }
}

// NewYouTubeClient creates a metadata client for the YouTube Data API.
func NewYouTubeClient(apiKey string, timeout time.Duration, opts ...YouTubeClientOption) *YouTubeClient {
	c := &YouTubeClient{
		apiKey:  apiKey,
		baseURL: defaultYouTubeBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ MetadataProvider = (*YouTubeClient)(nil)

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// ListChannelUploads returns the channel's most recent uploads, newest first.
// It needs two API calls: a search for recent video ids, then a videos lookup
// because only the latter carries durations.
func (c *YouTubeClient) ListChannelUploads(ctx context.Context, channelID string, limit int) ([]VideoMetadata, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("channelId", channelID)
	q.Set("part", "id")
	q.Set("type", "video")
	q.Set("order", "date")
	q.Set("maxResults", fmt.Sprintf("%d", limit))

	var search searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+q.Encode(), &search); err != nil {
		return nil, fmt.Errorf("searching channel uploads: %w", err)
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	q = url.Values{}
	q.Set("key", c.apiKey)
	q.Set("id", strings.Join(ids, ","))
	q.Set("part", "snippet,contentDetails")

	var details videosResponse
	if err := c.getJSON(ctx, c.baseURL+"/videos?"+q.Encode(), &details); err != nil {
		return nil, fmt.Errorf("fetching video details: %w", err)
	}

	out := make([]VideoMetadata, 0, len(details.Items))
	for _, item := range details.Items {
		out = append(out, VideoMetadata{
			YouTubeID:   item.ID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: item.Snippet.PublishedAt,
			Duration:    item.ContentDetails.Duration,
		})
	}
	return out, nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, u string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
