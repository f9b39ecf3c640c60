package videos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuitable(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		title    string
		want     bool
	}{
		{"normal food video", 600, "Best Ramen in Tokyo", true},
		{"short-form", 45, "Quick bite review", false},
		{"exactly 60 seconds", 60, "One minute review", false},
		{"too brief for narration", 90, "Street food snippet", false},
		{"exactly at threshold", 120, "Two minute tour", false},
		{"just above threshold", 121, "Two minute tour", true},
		{"zero duration fail-open", 0, "Rome Food Tour", true},
		{"zero duration denylisted title", 0, "Channel trailer", false},
		{"music keyword", 600, "Cooking Music Mix", false},
		{"live stream keyword", 600, "Live Stream: eating tour", false},
		{"shorts keyword", 600, "Best Shorts of 2024", false},
		{"compilation keyword", 600, "Food COMPILATION", false},
		{"announcement keyword", 600, "Big Announcement!", false},
		{"keyword case-insensitive", 600, "TRAILER for next week", false},
		{"negative duration treated as unknown", -1, "Food Tour", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSuitable(tt.duration, tt.title))
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT1H2M30S", 3750},
		{"PT12M30S", 750},
		{"PT45S", 45},
		{"PT2M", 120},
		{"PT1H", 3600},
		{"P1DT1H", 90000},
		{"P0D", 0},
		{"", 0},
		{"garbage", 0},
		{"pt3m5s", 185},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseISODuration(tt.in))
		})
	}
}
