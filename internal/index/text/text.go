// Package text provides typo-tolerant matching over listing names and
// descriptions via a trigram inverted index. Scores are pattern-side
// containment: the fraction of the pattern's trigrams found in a
// document, in [0,1], independent of document length.
package text

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Index is a trigram inverted index. Safe for concurrent use: readers
// proceed in parallel, writers are serialized.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[string]struct{}
	docs     map[string][]string
}

// New creates an empty text index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[string]struct{}),
		docs:     make(map[string][]string),
	}
}

// Upsert recomputes the trigram set for a listing's name and description.
func (i *Index) Upsert(id, name, description string) {
	grams := Trigrams(name + " " + description)

	i.mu.Lock()
	defer i.mu.Unlock()

	i.removeLocked(id)
	for _, g := range grams {
		set, ok := i.postings[g]
		if !ok {
			set = make(map[string]struct{})
			i.postings[g] = set
		}
		set[id] = struct{}{}
	}
	i.docs[id] = grams
}

// Remove deletes a listing from the index. Returns false if absent.
func (i *Index) Remove(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.docs[id]; !ok {
		return false
	}
	i.removeLocked(id)
	return true
}

func (i *Index) removeLocked(id string) {
	for _, g := range i.docs[id] {
		if set, ok := i.postings[g]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(i.postings, g)
			}
		}
	}
	delete(i.docs, id)
}

// Query scores every listing sharing a trigram with the pattern and
// returns those at or above the threshold. Partial words and minor
// misspellings still share most trigrams with the indexed text, so no
// prefix or whole-word match is required.
func (i *Index) Query(pattern string, threshold float64) map[string]float64 {
	grams := Trigrams(pattern)
	if len(grams) == 0 {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	counts := make(map[string]int)
	for _, g := range grams {
		for id := range i.postings[g] {
			counts[id]++
		}
	}

	out := make(map[string]float64, len(counts))
	for id, n := range counts {
		score := float64(n) / float64(len(grams))
		if score >= threshold {
			out[id] = score
		}
	}
	return out
}

// Contains reports whether the listing is indexed.
func (i *Index) Contains(id string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.docs[id]
	return ok
}

// Len returns the number of indexed listings.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// IDs returns all indexed listing ids in sorted order (consistency sweep).
func (i *Index) IDs() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ids := make([]string, 0, len(i.docs))
	for id := range i.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Trigrams normalizes text (lowercase, alphanumeric word split) and
// extracts the deduplicated trigram set. Each word is padded with two
// leading and one trailing space so short words and word boundaries
// still produce trigrams.
func Trigrams(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{})
	grams := make([]string, 0, len(words)*4)
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			g := string(padded[i : i+3])
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			grams = append(grams, g)
		}
	}
	return grams
}
