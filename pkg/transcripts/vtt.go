package transcripts

import (
	"regexp"
	"strconv"
	"strings"
)

// Auto-generated caption files carry substantial bloat: headers, timing
// cues, styling tags, and rolling-caption duplicates. These regexes drive
// the cleanup.
var (
	vttHeaderRe  = regexp.MustCompile(`^WEBVTT\b.*$`)
	timingLineRe = regexp.MustCompile(`^(\d{2}:)?\d{2}:\d{2}\.\d{3}\s*-->\s*(\d{2}:)?\d{2}:\d{2}\.\d{3}`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	cueIDRe      = regexp.MustCompile(`^\d+$`)
	metaLineRe   = regexp.MustCompile(`^(Kind|Language|NOTE|STYLE|REGION)\b`)
)

// ParseVTT converts raw WEBVTT content into ordered captions with millisecond
// offsets. Rolling duplicate lines from auto-generated subtitles are dropped.
func ParseVTT(raw string) []Caption {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var captions []Caption
	currentOffset := -1
	prevText := ""

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")

		if vttHeaderRe.MatchString(line) || metaLineRe.MatchString(line) {
			continue
		}

		if timingLineRe.MatchString(line) {
			parts := strings.SplitN(line, "-->", 2)
			currentOffset = parseTimestampMillis(strings.TrimSpace(parts[0]))
			continue
		}

		if cueIDRe.MatchString(strings.TrimSpace(line)) {
			continue
		}

		text := strings.TrimSpace(htmlTagRe.ReplaceAllString(line, ""))
		if text == "" || currentOffset < 0 {
			continue
		}
		if text == prevText {
			continue
		}

		captions = append(captions, Caption{Text: text, OffsetMillis: currentOffset})
		prevText = text
	}

	return captions
}

// CleanVTT reduces raw WEBVTT content to plain readable text.
func CleanVTT(raw string) string {
	captions := ParseVTT(raw)
	if len(captions) == 0 {
		return ""
	}
	parts := make([]string, len(captions))
	for i, c := range captions {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// parseTimestampMillis parses "HH:MM:SS.mmm" or "MM:SS.mmm" into milliseconds.
func parseTimestampMillis(ts string) int {
	main, frac, ok := strings.Cut(ts, ".")
	if !ok {
		return 0
	}

	fields := strings.Split(main, ":")
	var h, m, s int
	switch len(fields) {
	case 3:
		h, _ = strconv.Atoi(fields[0])
		m, _ = strconv.Atoi(fields[1])
		s, _ = strconv.Atoi(fields[2])
	case 2:
		m, _ = strconv.Atoi(fields[0])
		s, _ = strconv.Atoi(fields[1])
	default:
		return 0
	}

	ms, _ := strconv.Atoi(frac)
	return ((h*3600+m*60+s)*1000 + ms)
}
