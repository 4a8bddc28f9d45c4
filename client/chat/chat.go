// Package chat keeps a running question/answer transcript whose questions are
// answered against the full set of the user's notes.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/internal/notectx"
)

var (
	// ErrEmptyQuestion is returned for empty or whitespace-only questions.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrAskInFlight is returned while a previous question awaits its answer.
	ErrAskInFlight = errors.New("a question is already awaiting an answer")
)

// Answerer answers a question given the notes context. *client.Client
// satisfies it.
type Answerer interface {
	Ask(ctx context.Context, question, notesContext string) (string, error)
}

// NoteSource provides the current ordered notes. *notestore.Store satisfies it.
type NoteSource interface {
	Notes() []client.Note
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript line. Failed marks assistant messages standing in
// for an answer that could not be obtained.
type Message struct {
	Role    Role
	Content string
	Failed  bool
}

// State is the position in the ask cycle.
type State int

const (
	Idle State = iota
	QuestionSubmitted
	AwaitingAnswer
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case QuestionSubmitted:
		return "question-submitted"
	case AwaitingAnswer:
		return "awaiting-answer"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AskError reports a question that could not be answered.
type AskError struct {
	Question string
	Err      error
}

func (e *AskError) Error() string { return fmt.Sprintf("%s: %v", client.AskFailure, e.Err) }

func (e *AskError) Unwrap() error { return e.Err }

// FailureKind lets client.KindOf recognise the error.
func (e *AskError) FailureKind() client.Kind { return client.AskFailure }

// Chat is safe for concurrent use; only one question is answered at a time.
type Chat struct {
	answerer Answerer
	notes    NoteSource
	logger   zerolog.Logger

	onChange func()

	mu         sync.Mutex
	transcript []Message
	state      State
}

// Option customises a Chat.
type Option func(*Chat)

// WithChangeHandler is called after every transcript or state change, without
// the chat lock held.
func WithChangeHandler(fn func()) Option { return func(c *Chat) { c.onChange = fn } }

// New returns a Chat with an empty transcript.
func New(answerer Answerer, notes NoteSource, logger zerolog.Logger, opts ...Option) *Chat {
	c := &Chat{answerer: answerer, notes: notes, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask appends question to the transcript, asks the backend with the context
// string of every current note, and appends the answer. A failed call appends
// a Failed assistant message and returns an *AskError, so every accepted
// question adds exactly two messages. Empty questions change nothing.
func (c *Chat) Ask(ctx context.Context, question string) (Message, error) {
	if strings.TrimSpace(question) == "" {
		return Message{}, ErrEmptyQuestion
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return Message{}, ErrAskInFlight
	}
	c.transcript = append(c.transcript, Message{Role: RoleUser, Content: question})
	c.state = QuestionSubmitted
	c.mu.Unlock()
	c.changed()

	notesContext := notectx.Build(c.notes.Notes())

	c.mu.Lock()
	c.state = AwaitingAnswer
	c.mu.Unlock()
	c.changed()

	answer, err := c.answerer.Ask(ctx, question, notesContext)

	reply := Message{Role: RoleAssistant, Content: answer}
	if err != nil {
		reply = Message{Role: RoleAssistant, Content: failureText(err), Failed: true}
		c.logger.Warn().Err(err).Msg("chat: ask failed")
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, reply)
	c.state = Idle
	c.mu.Unlock()
	c.changed()

	if err != nil {
		return reply, &AskError{Question: question, Err: err}
	}
	return reply, nil
}

func (c *Chat) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func failureText(err error) string {
	if client.IsTimeout(err) {
		return "No answer: the request timed out."
	}
	return "No answer: " + err.Error()
}

// Transcript returns a copy of every message so far, oldest first.
func (c *Chat) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

// State reports where the current ask cycle stands.
func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
