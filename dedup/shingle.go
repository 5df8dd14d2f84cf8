package dedup

import (
	"hash/fnv"
	"strings"
)

// shingleSize is the token n-gram width. Three tokens is wide enough to
// separate "annual support contract" from "annual license contract" while
// staying tolerant of small edits.
const shingleSize = 3

// Stop words carry no identity and would inflate similarity between
// unrelated items.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenize splits text into words, lowercases, trims punctuation, and
// removes stop words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// shingles hashes the token n-grams of text into a set of 64-bit values.
// Texts shorter than the shingle width contribute a single shingle covering
// all their tokens, so short names still dedup against each other.
func shingles(text string) map[uint64]struct{} {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	set := make(map[uint64]struct{})
	if len(tokens) < shingleSize {
		set[hashShingle(tokens)] = struct{}{}
		return set
	}

	for i := 0; i+shingleSize <= len(tokens); i++ {
		set[hashShingle(tokens[i:i+shingleSize])] = struct{}{}
	}
	return set
}

func hashShingle(tokens []string) uint64 {
	h := fnv.New64a()
	for i, tok := range tokens {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(tok))
	}
	return h.Sum64()
}
