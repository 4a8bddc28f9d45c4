// Package search ranks notes by embedding similarity.
package search

import (
	"math"
	"sort"

	"github.com/quillmind/quillmind/server/internal/model"
)

// Scored is a note with its similarity to a query.
type Scored struct {
	Note  *model.Note
	Score float64
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TopK ranks notes by descending similarity to query and keeps at most k.
// Ties keep the input order. Notes without an embedding are skipped.
func TopK(query []float32, notes []*model.Note, k int) []Scored {
	scored := make([]Scored, 0, len(notes))
	for _, n := range notes {
		if len(n.Embedding) == 0 {
			continue
		}
		scored = append(scored, Scored{Note: n, Score: Cosine(query, n.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
