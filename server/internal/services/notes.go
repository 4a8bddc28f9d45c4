package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/embeddings"
	"github.com/quillmind/quillmind/server/internal/llm"
	"github.com/quillmind/quillmind/server/internal/model"
	"github.com/quillmind/quillmind/server/internal/search"
	"github.com/quillmind/quillmind/server/internal/store"
)

// Embed input modes, mirrored from config.
const (
	EmbedNote    = "note"
	EmbedContext = "context"
)

// NoteService orchestrates the note and question-answering use cases.
type NoteService struct {
	store      store.Store
	emb        embeddings.EmbeddingProvider
	gen        llm.Generator
	embedInput string
	topK       int
	log        zerolog.Logger
}

// NoteServiceOption customises a NoteService.
type NoteServiceOption func(*NoteService)

// WithEmbedInput selects what EmbedAndSave embeds (EmbedNote or EmbedContext).
func WithEmbedInput(mode string) NoteServiceOption {
	return func(s *NoteService) { s.embedInput = mode }
}

// WithTopK bounds how many stored notes are retrieved for a question.
func WithTopK(k int) NoteServiceOption {
	return func(s *NoteService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) NoteServiceOption {
	return func(s *NoteService) { s.log = l }
}

func NewNoteService(s store.Store, emb embeddings.EmbeddingProvider, gen llm.Generator, opts ...NoteServiceOption) *NoteService {
	svc := &NoteService{
		store:      s,
		emb:        emb,
		gen:        gen,
		embedInput: EmbedNote,
		topK:       10,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

func (s *NoteService) ListNotes(ctx context.Context) ([]*model.Note, error) {
	return s.store.Notes().List(ctx)
}

// DeleteNote removes a note. Deleting an id that does not exist succeeds.
func (s *NoteService) DeleteNote(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", model.ErrValidation)
	}
	return s.store.Notes().Delete(ctx, id)
}

// EmbedAndSave embeds the note and persists it. A request carrying an id
// updates that note; an id the store no longer knows is saved as a new note.
func (s *NoteService) EmbedAndSave(ctx context.Context, req model.EmbedAndSaveRequest) (*model.Note, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Note) == "" {
		return nil, fmt.Errorf("%w: title or note is required", model.ErrValidation)
	}
	if req.ID != nil && *req.ID <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", model.ErrValidation)
	}

	vec, err := s.emb.Embed(ctx, s.embedText(req))
	if err != nil {
		return nil, fmt.Errorf("embed note: %w", err)
	}

	n := &model.Note{Title: req.Title, Content: req.Note, Embedding: vec}
	if req.ID != nil {
		n.ID = *req.ID
		out, err := s.store.Notes().Update(ctx, n)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		s.log.Warn().Int64("note_id", n.ID).Msg("update target missing; creating note")
		n.ID = 0
	}
	return s.store.Notes().Create(ctx, n)
}

func (s *NoteService) embedText(req model.EmbedAndSaveRequest) string {
	if s.embedInput == EmbedContext && strings.TrimSpace(req.All) != "" {
		return req.All
	}
	return req.Title + ": " + req.Note
}

// Ask answers question from the stored notes closest to it. When retrieval
// yields nothing the client-supplied context is used instead.
func (s *NoteService) Ask(ctx context.Context, req model.AskRequest) (*model.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", model.ErrValidation)
	}

	notesContext, err := s.retrieve(ctx, question)
	if err != nil {
		s.log.Warn().Err(err).Msg("retrieval failed; using client context")
	}
	if notesContext == "" {
		notesContext = req.NotesContext
	}

	answer, err := s.gen.Generate(ctx, llm.BuildPrompt(notesContext, question))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return &model.AskResponse{Answer: answer}, nil
}

func (s *NoteService) retrieve(ctx context.Context, question string) (string, error) {
	notes, err := s.store.Notes().List(ctx)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "", nil
	}
	qvec, err := s.emb.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	ranked := search.TopK(qvec, notes, s.topK)
	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		parts = append(parts, FormatNote(r.Note))
	}
	s.log.Debug().Int("candidates", len(notes)).Int("retrieved", len(parts)).Msg("retrieved notes")
	return strings.Join(parts, "\n\n"), nil
}

// FormatNote renders a retrieved note for the prompt context.
func FormatNote(n *model.Note) string {
	return "Title: " + n.Title + " \n\n Content: " + n.Content
}
