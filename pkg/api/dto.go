package api

import (
	"time"

	"github.com/tastetrail/tastetrail/pkg/recommendations"
	"github.com/tastetrail/tastetrail/pkg/restaurants"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

// videoResponse is the public video shape. The raw transcript stays private.
type videoResponse struct {
	ID              string     `json:"id"`
	YouTubeID       string     `json:"youtube_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	Processed       bool       `json:"processed"`
	ProcessingError string     `json:"processing_error,omitempty"`
	HasTranscript   bool       `json:"has_transcript"`
}

func toVideoResponse(v *videos.Video) videoResponse {
	return videoResponse{
		ID:              v.ID.String(),
		YouTubeID:       v.YouTubeID,
		Title:           v.Title,
		Description:     v.Description,
		PublishedAt:     v.PublishedAt,
		DurationSeconds: v.DurationSeconds,
		Processed:       v.Processed,
		ProcessingError: v.ProcessingError,
		HasTranscript:   v.Transcript != nil,
	}
}

type restaurantResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	City          string   `json:"city,omitempty"`
	Country       string   `json:"country,omitempty"`
	Cuisine       string   `json:"cuisine,omitempty"`
	PriceRange    string   `json:"price_range,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	GooglePlaceID string   `json:"google_place_id,omitempty"`
}

func toRestaurantResponse(r *restaurants.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:            r.ID.String(),
		Name:          r.Name,
		Address:       r.Address,
		City:          r.City,
		Country:       r.Country,
		Cuisine:       r.Cuisine,
		PriceRange:    r.PriceRange,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		GooglePlaceID: r.GooglePlaceID,
	}
}

type recommendationResponse struct {
	VideoID       string  `json:"video_id"`
	DishMentioned string  `json:"dish_mentioned,omitempty"`
	ContextQuote  string  `json:"context_quote,omitempty"`
	Confidence    float64 `json:"confidence"`
	MentionedAt   *int    `json:"mentioned_at,omitempty"`
}

func toRecommendationResponses(recs []*recommendations.Recommendation) []recommendationResponse {
	out := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recommendationResponse{
			VideoID:       rec.VideoID.String(),
			DishMentioned: rec.DishMentioned,
			ContextQuote:  rec.ContextQuote,
			Confidence:    rec.Confidence,
			MentionedAt:   rec.MentionedAt,
		})
	}
	return out
}

// addFavoriteRequest is the POST /api/favorites body.
type addFavoriteRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required,uuid4"`
}

// adminAddVideoRequest is the POST /api/admin/videos body for direct adds
// outside of channel sync.
type adminAddVideoRequest struct {
	YouTubeID   string `json:"youtube_id" validate:"required,min=5"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	// Duration is the ISO-8601 duration string ("PT12M30S").
	Duration    string     `json:"duration"`
	PublishedAt *time.Time `json:"published_at"`
}

// processBatchRequest is the POST /api/admin/process-batch body.
type processBatchRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}
