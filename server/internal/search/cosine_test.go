package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillmind/quillmind/server/internal/model"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.False(t, math.IsNaN(Cosine([]float32{0}, []float32{0})))
}

func TestTopK_OrdersDescendingAndTruncates(t *testing.T) {
	notes := []*model.Note{
		{ID: 1, Embedding: []float32{0, 1}},
		{ID: 2, Embedding: []float32{1, 0}},
		{ID: 3, Embedding: []float32{1, 1}},
		{ID: 4},
		{ID: 5, Embedding: []float32{1, 0, 0}},
	}
	got := TopK([]float32{1, 0}, notes, 3)
	ids := make([]int64, len(got))
	for i, s := range got {
		ids[i] = s.Note.ID
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	assert.Len(t, TopK([]float32{1, 0}, notes, 10), 4)
	assert.Empty(t, TopK([]float32{1, 0}, nil, 10))
}
