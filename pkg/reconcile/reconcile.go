// Package reconcile estimates the playback offset at which each extracted
// restaurant mention occurs, by scoring candidate terms against a sliding
// window of timestamped captions. This is a nearest-mention heuristic, not
// exact alignment: source captions are approximate and recommendations are
// narrated, not labeled.
package reconcile

import (
	"strings"

	"github.com/tastetrail/tastetrail/pkg/extraction"
	"github.com/tastetrail/tastetrail/pkg/transcripts"
)

// Term weights and acceptance threshold. A single weak token hit is not
// enough; a match needs corroborating signal.
const (
	fullNameWeight    = 2
	nameTokenWeight   = 1
	contextWordWeight = 1
	minAcceptScore    = 2
	windowRadius      = 2
	minContextWordLen = 4
)

type weightedTerm struct {
	term   string
	weight int
}

// Reconcile fills MentionedAt for each candidate whose best window score
// reaches the acceptance threshold. Candidates below threshold keep a nil
// offset. With no timestamped segments the input is returned unchanged.
// Never errors.
func Reconcile(segments []transcripts.Segment, candidates []extraction.Candidate) []extraction.Candidate {
	if len(segments) == 0 || len(candidates) == 0 {
		return candidates
	}

	windows := buildWindows(segments)

	out := make([]extraction.Candidate, len(candidates))
	copy(out, candidates)

	for i := range out {
		terms := buildTerms(out[i])
		if len(terms) == 0 {
			continue
		}

		bestScore := 0
		bestOffset := 0
		for w, text := range windows {
			score := scoreWindow(text, terms)
			if score > bestScore {
				bestScore = score
				bestOffset = int(segments[w].Offset)
			}
		}

		if bestScore >= minAcceptScore {
			offset := bestOffset
			out[i].MentionedAt = &offset
		}
	}

	return out
}

// buildWindows precomputes the lowercased concatenated text of the 5-entry
// window centered on each segment (2 before, current, 2 after, clamped at
// the edges).
func buildWindows(segments []transcripts.Segment) []string {
	windows := make([]string, len(segments))
	for i := range segments {
		lo := i - windowRadius
		if lo < 0 {
			lo = 0
		}
		hi := i + windowRadius
		if hi >= len(segments) {
			hi = len(segments) - 1
		}

		var b strings.Builder
		for j := lo; j <= hi; j++ {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(segments[j].Text)
		}
		windows[i] = strings.ToLower(b.String())
	}
	return windows
}

// buildTerms assembles the weighted search-term set for one candidate: the
// full name, each name token, and each sufficiently long context word.
func buildTerms(c extraction.Candidate) []weightedTerm {
	var terms []weightedTerm
	seen := map[string]bool{}

	name := strings.ToLower(strings.TrimSpace(c.Name))
	if name != "" {
		terms = append(terms, weightedTerm{term: name, weight: fullNameWeight})
		seen[name] = true
	}

	for _, token := range strings.Fields(name) {
		if !seen[token] {
			terms = append(terms, weightedTerm{term: token, weight: nameTokenWeight})
			seen[token] = true
		}
	}

	for _, word := range strings.Fields(strings.ToLower(c.Context)) {
		word = strings.Trim(word, `.,!?";:()`)
		if len(word) >= minContextWordLen && !seen[word] {
			terms = append(terms, weightedTerm{term: word, weight: contextWordWeight})
			seen[word] = true
		}
	}

	return terms
}

func scoreWindow(windowText string, terms []weightedTerm) int {
	score := 0
	for _, t := range terms {
		if strings.Contains(windowText, t.term) {
			score += t.weight
		}
	}
	return score
}
