// Package notestore keeps the local, ordered list of notes in step with the
// backend. Edits are applied optimistically, saves for one note run strictly in
// order, and deletes remove the note at once while the backend call proceeds
// in the background.
package notestore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/internal/shardqueue"
)

// Backend is the subset of *client.Client the store depends on.
type Backend interface {
	GetAllNotes(ctx context.Context) ([]client.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	EmbedAndSave(ctx context.Context, req client.EmbedAndSaveRequest) (*client.Note, error)
}

// Defaults for notes created locally.
const (
	DefaultTitle   = "New Note"
	DefaultContent = "Start writing your note here..."
)

// CommitState tracks how a note's local fields relate to the backend.
type CommitState int

const (
	// StateLocal notes were created here and never saved.
	StateLocal CommitState = iota
	// StatePending notes have a save in flight.
	StatePending
	// StateCommitted notes match what the backend acknowledged.
	StateCommitted
	// StateReverted notes had their last save rejected and were rolled back.
	StateReverted
)

func (s CommitState) String() string {
	switch s {
	case StateLocal:
		return "local"
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Entry is a note together with its commit state.
type Entry struct {
	Note  client.Note
	State CommitState
}

// EditSession is the single open draft.
type EditSession struct {
	NoteID       int64
	DraftTitle   string
	DraftContent string
}

// entry is the internal record for one note. slot never changes, unlike the
// note id, and keys the note's work on the executor.
type entry struct {
	slot  uint64
	note  client.Note
	base  client.Note // fields restored when a save fails
	state CommitState

	durable     bool
	gen         uint64 // bumped by every save
	outstanding int    // queued saves and deletes
	deleting    bool
	deletedAt   int
}

type session struct {
	slot         uint64
	draftTitle   string
	draftContent string
}

// Store is safe for concurrent use.
type Store struct {
	backend Backend
	exec    *shardqueue.Executor
	cfg     config
	logger  zerolog.Logger

	// submitMu is held from the local state change until the matching job is
	// on the executor, so jobs for one slot queue in the order they were
	// decided. Lock order: submitMu, then mu.
	submitMu sync.Mutex

	mu              sync.Mutex
	entries         []*entry
	slots           map[uint64]*entry
	nextSlot        uint64
	lastProvisional int64
	session         *session
}

type config struct {
	loadAttempts   int
	deleteAttempts int
	retryBackoff   time.Duration
	queue          shardqueue.Config
	now            func() time.Time
	onFailure      func(*OpError)
	onChange       func()
}

// Option customises a Store.
type Option func(*config)

// WithLoadAttempts bounds how often LoadAll contacts the backend.
func WithLoadAttempts(n int) Option { return func(c *config) { c.loadAttempts = n } }

// WithDeleteAttempts bounds how often a queued deletion contacts the backend.
func WithDeleteAttempts(n int) Option { return func(c *config) { c.deleteAttempts = n } }

// WithRetryBackoff sets the first retry interval for loads and deletes.
func WithRetryBackoff(d time.Duration) Option { return func(c *config) { c.retryBackoff = d } }

// WithClock overrides the time source for provisional ids.
func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

// WithFailureHandler receives failures of background work, currently deletes
// that were rolled back.
func WithFailureHandler(fn func(*OpError)) Option { return func(c *config) { c.onFailure = fn } }

// WithChangeHandler is called after state changes made by background work
// or by a save in progress. It runs without the store lock held.
func WithChangeHandler(fn func()) Option { return func(c *config) { c.onChange = fn } }

// WithQueueShards sets the number of executor shards.
func WithQueueShards(n int) Option { return func(c *config) { c.queue.Shards = n } }

// New creates an empty store. Executor tunables are read from SQ_* variables;
// invalid values fall back to defaults.
func New(backend Backend, logger zerolog.Logger, opts ...Option) *Store {
	qcfg, err := shardqueue.LoadConfig()
	if err != nil {
		logger.Warn().Err(err).Msg("notestore: invalid SQ_* settings, using defaults")
		qcfg = shardqueue.Config{}
	}
	cfg := config{
		loadAttempts:   3,
		deleteAttempts: 3,
		retryBackoff:   200 * time.Millisecond,
		queue:          qcfg,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loadAttempts < 1 {
		cfg.loadAttempts = 1
	}
	if cfg.deleteAttempts < 1 {
		cfg.deleteAttempts = 1
	}

	s := &Store{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		slots:   make(map[uint64]*entry),
	}
	cfg.queue.MaxAttempts = 1
	cfg.queue.Logger = logger
	cfg.queue.ErrorHandler = func(err error) {
		s.logger.Debug().Err(err).Msg("notestore: background job failed")
	}
	s.exec = shardqueue.New(cfg.queue)
	return s
}

// Close drains queued work and stops the executor.
func (s *Store) Close() error { return s.exec.Close() }

// Notes returns a copy of the ordered note list.
func (s *Store) Notes() []client.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notesLocked()
}

// Entries returns the ordered note list with commit states.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Note: e.note, State: e.state}
	}
	return out
}

// Await blocks until every save and delete queued so far has finished.
func (s *Store) Await(ctx context.Context) error {
	s.mu.Lock()
	var keys []string
	for _, e := range s.slots {
		if e.outstanding > 0 {
			keys = append(keys, slotKey(e.slot))
		}
	}
	s.mu.Unlock()

	for _, k := range keys {
		if err := s.exec.Barrier(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) notesLocked() []client.Note {
	out := make([]client.Note, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.note
	}
	return out
}

func (s *Store) indexLocked(id int64) int {
	for i, e := range s.entries {
		if e.note.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) addLocked(n client.Note, state CommitState, durable bool) *entry {
	s.nextSlot++
	e := &entry{slot: s.nextSlot, note: n, base: n, state: state, durable: durable}
	s.entries = append(s.entries, e)
	s.slots[e.slot] = e
	return e
}

func (s *Store) reportFailure(err *OpError) {
	if s.cfg.onFailure != nil {
		s.cfg.onFailure(err)
	}
}

func (s *Store) changed() {
	if s.cfg.onChange != nil {
		s.cfg.onChange()
	}
}

func slotKey(slot uint64) string { return "note-" + strconv.FormatUint(slot, 10) }
