package fluencymetrics

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// WordErrorRate computes WER between a reference text and a recognized
// transcript: (substitutions + insertions + deletions) / reference words.
// Both strings should already be normalized by the caller. An empty
// reference with a non-empty transcript yields 1.0.
func WordErrorRate(reference, recognized string) float64 {
	refWords := strings.Fields(reference)
	recWords := strings.Fields(recognized)
	if len(refWords) == 0 {
		if len(recWords) == 0 {
			return 0
		}
		return 1.0
	}
	ids := make(map[string]rune, len(refWords)+len(recWords))
	distance := levenshtein.DistanceForStrings(wordRunes(refWords, ids), wordRunes(recWords, ids), levenshtein.DefaultOptionsWithSub)
	return float64(distance) / float64(len(refWords))
}

// CharErrorRate computes CER over runes with the same conventions as
// WordErrorRate.
func CharErrorRate(reference, recognized string) float64 {
	refRunes := []rune(reference)
	recRunes := []rune(recognized)
	if len(refRunes) == 0 {
		if len(recRunes) == 0 {
			return 0
		}
		return 1.0
	}
	// DefaultOptionsWithSub charges substitutions 1, matching the
	// (S+I+D)/N convention; DefaultOptions would decompose them into an
	// insert plus a delete.
	distance := levenshtein.DistanceForStrings(refRunes, recRunes, levenshtein.DefaultOptionsWithSub)
	return float64(distance) / float64(len(refRunes))
}

// wordRunes maps each distinct word to a synthetic rune so the rune-based
// edit distance operates on whole words. The id table is shared across both
// sequences of one comparison.
func wordRunes(words []string, ids map[string]rune) []rune {
	runes := make([]rune, len(words))
	for i, w := range words {
		id, ok := ids[w]
		if !ok {
			id = rune(len(ids) + 1)
			ids[w] = id
		}
		runes[i] = id
	}
	return runes
}
