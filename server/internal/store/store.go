package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quillmind/quillmind/server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Notes() Notes
}

// Notes persists notes together with their embeddings. List returns notes in
// ascending id order. Delete of a missing id succeeds.
type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	Update(ctx context.Context, n *model.Note) (*model.Note, error)
	Get(ctx context.Context, id int64) (*model.Note, error)
	List(ctx context.Context) ([]*model.Note, error)
	Delete(ctx context.Context, id int64) error
}

// EncodeEmbedding serialises a vector for the embedding_json column.
func EncodeEmbedding(v []float32) (string, error) {
	if v == nil {
		v = []float32{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	return string(b), nil
}

// DecodeEmbedding parses the embedding_json column. Empty input yields nil.
func DecodeEmbedding(s string) ([]float32, error) {
	if s == "" {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return v, nil
}
