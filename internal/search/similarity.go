// ABOUTME: Similarity search over candidate memories with threshold and top-N modes
// ABOUTME: Invalid or mismatched embeddings are skipped, never fatal
package search

import (
	"container/heap"
	"sort"

	"github.com/mbrook/engram/internal/models"
	"github.com/mbrook/engram/internal/vecmath"
)

const (
	// DefaultThreshold is the minimum similarity for FindSimilar matches.
	DefaultThreshold = 0.7
	// DefaultLimit caps FindSimilar results.
	DefaultLimit = 10
	// DefaultDuplicateThreshold is the high bar for duplicate detection.
	DefaultDuplicateThreshold = 0.85
)

// FindOptions tunes FindSimilar. Zero Limit means DefaultLimit.
type FindOptions struct {
	Threshold  float64
	Limit      int
	ExcludeIDs []string
}

// DefaultFindOptions returns the standard search options.
func DefaultFindOptions() FindOptions {
	return FindOptions{Threshold: DefaultThreshold, Limit: DefaultLimit}
}

// FindSimilar ranks candidates by cosine similarity to query. Candidates with
// missing or wrong-dimension embeddings and excluded ids are silently skipped.
// Matches at or above the threshold come back sorted descending, truncated to
// the limit.
func FindSimilar(query []float64, candidates []models.Memory, opts FindOptions) []models.Match {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	excluded := make(map[string]bool, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = true
	}

	matches := []models.Match{}
	for i := range candidates {
		c := &candidates[i]
		if excluded[c.ID] || len(c.Embedding) == 0 || len(c.Embedding) != len(query) {
			continue
		}
		similarity, err := vecmath.CosineSimilarity(query, c.Embedding)
		if err != nil {
			continue
		}
		if similarity >= opts.Threshold {
			matches = append(matches, models.Match{ID: c.ID, Similarity: similarity, Content: c.Content})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}

// TopN returns up to n best matches regardless of threshold, using a
// bounded min-heap so the full candidate set is never sorted.
func TopN(query []float64, candidates []models.Memory, n int) []models.Match {
	if n <= 0 {
		return []models.Match{}
	}

	h := &matchHeap{}
	heap.Init(h)
	for i := range candidates {
		c := &candidates[i]
		if len(c.Embedding) == 0 || len(c.Embedding) != len(query) {
			continue
		}
		similarity, err := vecmath.CosineSimilarity(query, c.Embedding)
		if err != nil {
			continue
		}
		match := models.Match{ID: c.ID, Similarity: similarity, Content: c.Content}
		if h.Len() < n {
			heap.Push(h, match)
		} else if similarity > (*h)[0].Similarity {
			(*h)[0] = match
			heap.Fix(h, 0)
		}
	}

	// Drain the heap into descending order
	out := make([]models.Match, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(models.Match)
	}
	return out
}

// DetectDuplicates finds candidates whose similarity to query clears a high
// threshold, sorted descending. threshold <= 0 uses the default 0.85.
func DetectDuplicates(query []float64, candidates []models.Memory, threshold float64) []models.Match {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return FindSimilar(query, candidates, FindOptions{
		Threshold: threshold,
		Limit:     len(candidates) + 1,
	})
}

// matchHeap is a min-heap on similarity, keeping the n best seen so far.
type matchHeap []models.Match

func (h matchHeap) Len() int            { return len(h) }
func (h matchHeap) Less(i, j int) bool  { return h[i].Similarity < h[j].Similarity }
func (h matchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x interface{}) { *h = append(*h, x.(models.Match)) }
func (h *matchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
