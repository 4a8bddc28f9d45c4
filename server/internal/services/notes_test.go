package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillmind/quillmind/server/internal/model"
	"github.com/quillmind/quillmind/server/internal/store"
	"github.com/quillmind/quillmind/server/internal/store/sqlite"
)

type fakeEmbedder struct {
	vecs  map[string][]float32
	err   error
	calls []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vecs[text]; ok {
		return v, nil
	}
	return []float32{1, 1}, nil
}

type fakeGenerator struct {
	prompt string
	answer string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(t.TempDir() + "/notes.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewWithDB(db)
}

func TestEmbedAndSave_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{}
	svc := NewNoteService(newStore(t), emb, &fakeGenerator{})

	created, err := svc.EmbedAndSave(ctx, model.EmbedAndSaveRequest{Title: "Groceries", Note: "milk, eggs", All: "Groceries: milk, eggs"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Groceries: milk, eggs", emb.calls[0])

	id := created.ID
	updated, err := svc.EmbedAndSave(ctx, model.EmbedAndSaveRequest{ID: &id, Title: "Groceries", Note: "milk, eggs, bread"})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "milk, eggs, bread", updated.Content)

	all, err := svc.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmbedAndSave_MissingIDCreates(t *testing.T) {
	svc := NewNoteService(newStore(t), &fakeEmbedder{}, &fakeGenerator{})
	id := int64(4242)
	out, err := svc.EmbedAndSave(context.Background(), model.EmbedAndSaveRequest{ID: &id, Title: "t", Note: "n"})
	require.NoError(t, err)
	assert.NotEqual(t, id, out.ID)
}

func TestEmbedAndSave_ContextMode(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := NewNoteService(newStore(t), emb, &fakeGenerator{}, WithEmbedInput(EmbedContext))

	_, err := svc.EmbedAndSave(context.Background(), model.EmbedAndSaveRequest{Title: "a", Note: "b", All: "a: b\n\nc: d"})
	require.NoError(t, err)
	_, err = svc.EmbedAndSave(context.Background(), model.EmbedAndSaveRequest{Title: "a", Note: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a: b\n\nc: d", "a: b"}, emb.calls)
}

func TestEmbedAndSave_Errors(t *testing.T) {
	svc := NewNoteService(newStore(t), &fakeEmbedder{err: errors.New("ollama down")}, &fakeGenerator{})

	_, err := svc.EmbedAndSave(context.Background(), model.EmbedAndSaveRequest{})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.EmbedAndSave(context.Background(), model.EmbedAndSaveRequest{Title: "t", Note: "n"})
	assert.ErrorContains(t, err, "ollama down")

	notes, err := svc.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	svc := NewNoteService(newStore(t), &fakeEmbedder{}, &fakeGenerator{})
	n, err := svc.EmbedAndSave(ctx, model.EmbedAndSaveRequest{Title: "t", Note: "n"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, n.ID))
	require.NoError(t, svc.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, svc.DeleteNote(ctx, 0), model.ErrValidation)
}

func TestAsk_RetrievesClosestNotes(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vecs: map[string][]float32{
		"Groceries: milk":          {1, 0},
		"Trip: pack passport":      {0, 1},
		"What should I buy today?": {1, 0.1},
	}}
	gen := &fakeGenerator{answer: "Milk."}
	svc := NewNoteService(newStore(t), emb, gen, WithTopK(1))

	_, err := svc.EmbedAndSave(ctx, model.EmbedAndSaveRequest{Title: "Groceries", Note: "milk"})
	require.NoError(t, err)
	_, err = svc.EmbedAndSave(ctx, model.EmbedAndSaveRequest{Title: "Trip", Note: "pack passport"})
	require.NoError(t, err)

	out, err := svc.Ask(ctx, model.AskRequest{Question: "What should I buy today?", NotesContext: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Milk.", out.Answer)
	assert.Contains(t, gen.prompt, "Title: Groceries \n\n Content: milk")
	assert.NotContains(t, gen.prompt, "passport")
	assert.NotContains(t, gen.prompt, "ignored")
	assert.True(t, strings.HasSuffix(gen.prompt, "Question:\n What should I buy today?"))
}

func TestAsk_FallsBackToClientContext(t *testing.T) {
	gen := &fakeGenerator{answer: "There is no information on this in the notes"}
	svc := NewNoteService(newStore(t), &fakeEmbedder{}, gen)

	_, err := svc.Ask(context.Background(), model.AskRequest{Question: "What are my notes about?", NotesContext: "Groceries: milk"})
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "Context:\n Groceries: milk")
}

func TestAsk_Errors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model missing")}
	svc := NewNoteService(newStore(t), &fakeEmbedder{}, gen)

	_, err := svc.Ask(context.Background(), model.AskRequest{Question: "   "})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Ask(context.Background(), model.AskRequest{Question: "q"})
	assert.ErrorContains(t, err, "model missing")
}
