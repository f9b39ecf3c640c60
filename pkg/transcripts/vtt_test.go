package transcripts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:03.500
I went to <c.colorE5E5E5>Pasta House</c>

2
00:00:03.500 --> 00:00:06.000
I went to Pasta House

00:00:06.000 --> 00:00:09.250
the carbonara was amazing
`

func TestParseVTT(t *testing.T) {
	captions := ParseVTT(sampleVTT)
	require.Len(t, captions, 2)

	assert.Equal(t, "I went to Pasta House", captions[0].Text)
	assert.Equal(t, 1000, captions[0].OffsetMillis)

	// The rolling duplicate at 3.5s is dropped; next distinct line keeps
	// its own offset.
	assert.Equal(t, "the carbonara was amazing", captions[1].Text)
	assert.Equal(t, 6000, captions[1].OffsetMillis)
}

func TestParseVTT_Empty(t *testing.T) {
	assert.Nil(t, ParseVTT(""))
	assert.Nil(t, ParseVTT("WEBVTT\n\n"))
}

func TestCleanVTT(t *testing.T) {
	got := CleanVTT(sampleVTT)
	assert.Equal(t, "I went to Pasta House the carbonara was amazing", got)
}

func TestParseTimestampMillis(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00:01.000", 1000},
		{"00:01:30.250", 90250},
		{"01:00:00.000", 3600000},
		{"02:15.500", 135500},
		{"bogus", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTimestampMillis(tt.in), tt.in)
	}
}
