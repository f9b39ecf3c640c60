package videos

import (
	"strconv"
	"strings"
)

// MinSuitableDurationSeconds is the floor below which a video is considered
// too short for narrative restaurant content.
const MinSuitableDurationSeconds = 120

// titleDenylist contains keywords that signal non-food content. Matching is
// case-insensitive substring.
var titleDenylist = []string{
	"music",
	"live stream",
	"shorts",
	"compilation",
	"trailer",
	"announcement",
}

// IsSuitable reports whether a video is eligible for processing based on its
// duration and title. Durations at or below 60 seconds are short-form;
// durations up to 120 seconds are too brief for restaurant narration. A zero
// duration means the provider did not report one and is fail-open: the video
// passes unless its title is denylisted.
func IsSuitable(durationSeconds int, title string) bool {
	if durationSeconds > 0 && durationSeconds <= MinSuitableDurationSeconds {
		return false
	}

	lower := strings.ToLower(title)
	for _, keyword := range titleDenylist {
		if strings.Contains(lower, keyword) {
			return false
		}
	}

	return true
}

// ParseISODuration converts an ISO-8601 duration of the form the YouTube API
// returns ("PT1H2M30S", "PT45S", "P0D") into whole seconds. Unparseable input
// yields 0, which IsSuitable treats as unknown.
func ParseISODuration(s string) int {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || !strings.HasPrefix(s, "P") {
		return 0
	}

	// Only the time portion carries data for video durations; day-or-larger
	// designators before 'T' are ignored except whole days.
	total := 0
	num := ""
	inTime := false
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			inTime = true
			num = ""
		case r == 'D':
			if n, err := strconv.Atoi(num); err == nil {
				total += n * 86400
			}
			num = ""
		case r == 'H' && inTime:
			if n, err := strconv.Atoi(num); err == nil {
				total += n * 3600
			}
			num = ""
		case r == 'M' && inTime:
			if n, err := strconv.Atoi(num); err == nil {
				total += n * 60
			}
			num = ""
		case r == 'S' && inTime:
			if n, err := strconv.Atoi(num); err == nil {
				total += n
			}
			num = ""
		default:
			num = ""
		}
	}

	return total
}
