// Package app ties the note store and the chat together behind one explicit
// state container. Front-ends call its operations and render the State
// snapshots it publishes; failures never escape as panics, they become
// Notifications.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/chat"
	"github.com/quillmind/quillmind/client/notestore"
)

// Backend is everything the controller needs from the notes service.
// *client.Client satisfies it.
type Backend interface {
	notestore.Backend
	chat.Answerer
}

// Notification is a user-visible report of a failed operation.
type Notification struct {
	Kind    client.Kind
	Message string
	At      time.Time
}

// State is an immutable snapshot of everything a front-end renders.
type State struct {
	Notes         []notestore.Entry
	Session       *notestore.EditSession
	Transcript    []chat.Message
	ChatState     chat.State
	Loading       bool
	Notifications []Notification
}

const defaultMaxNotifications = 20

// Controller is safe for concurrent use.
type Controller struct {
	store  *notestore.Store
	chat   *chat.Chat
	logger zerolog.Logger

	mu               sync.Mutex
	loading          bool
	notifications    []Notification
	maxNotifications int
	subs             map[int]chan State
	nextSub          int
}

// New wires a store and a chat to backend. Store options (retry counts,
// clock) are passed through.
func New(backend Backend, logger zerolog.Logger, opts ...notestore.Option) *Controller {
	c := &Controller{
		logger:           logger,
		maxNotifications: defaultMaxNotifications,
		subs:             make(map[int]chan State),
	}
	opts = append(opts,
		notestore.WithFailureHandler(func(err *notestore.OpError) { c.fail(err.Kind, err) }),
		notestore.WithChangeHandler(c.publish),
	)
	c.store = notestore.New(backend, logger, opts...)
	c.chat = chat.New(backend, c.store, logger, chat.WithChangeHandler(c.publish))
	return c
}

// Start performs the initial load. Loading is set for its duration.
func (c *Controller) Start(ctx context.Context) {
	c.setLoading(true)
	if err := c.store.LoadAll(ctx); err != nil {
		c.fail(client.LoadFailure, err)
	}
	c.setLoading(false)
}

// Reload fetches the notes again, discarding local state.
func (c *Controller) Reload(ctx context.Context) { c.Start(ctx) }

// CreateNote adds a local note and opens it for editing.
func (c *Controller) CreateNote() client.Note {
	n := c.store.Create()
	c.publish()
	return n
}

// BeginEdit opens an edit session on id.
func (c *Controller) BeginEdit(id int64) bool {
	_, err := c.store.BeginEdit(id)
	if err != nil {
		c.fail(client.SaveFailure, err)
		return false
	}
	c.publish()
	return true
}

// SetDraft updates the open draft.
func (c *Controller) SetDraft(title, content string) bool {
	if err := c.store.SetDraft(title, content); err != nil {
		c.fail(client.SaveFailure, err)
		return false
	}
	c.publish()
	return true
}

// CancelEdit discards the open draft.
func (c *Controller) CancelEdit() {
	c.store.CancelEdit()
	c.publish()
}

// Save persists the open draft and reports whether it was acknowledged.
func (c *Controller) Save(ctx context.Context) bool {
	if _, err := c.store.Save(ctx); err != nil {
		c.fail(client.SaveFailure, err)
		return false
	}
	c.publish()
	return true
}

// Delete removes id. Background failures surface later as notifications.
func (c *Controller) Delete(ctx context.Context, id int64) bool {
	if err := c.store.Delete(ctx, id); err != nil {
		c.fail(client.DeleteFailure, err)
		return false
	}
	c.publish()
	return true
}

// Ask submits a question. Empty questions are ignored without a notification.
func (c *Controller) Ask(ctx context.Context, question string) bool {
	if _, err := c.chat.Ask(ctx, question); err != nil {
		if errors.Is(err, chat.ErrEmptyQuestion) {
			return false
		}
		c.fail(client.AskFailure, err)
		return false
	}
	return true
}

// Await waits for queued saves and deletes.
func (c *Controller) Await(ctx context.Context) error { return c.store.Await(ctx) }

// DismissNotifications clears the notification list.
func (c *Controller) DismissNotifications() {
	c.mu.Lock()
	c.notifications = nil
	c.mu.Unlock()
	c.publish()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	loading := c.loading
	notes := append([]Notification(nil), c.notifications...)
	c.mu.Unlock()

	st := State{
		Notes:         c.store.Entries(),
		Transcript:    c.chat.Transcript(),
		ChatState:     c.chat.State(),
		Loading:       loading,
		Notifications: notes,
	}
	if sess, ok := c.store.Session(); ok {
		st.Session = &sess
	}
	return st
}

// Subscribe returns a channel that always holds the most recent snapshot not
// yet received. Slow readers skip intermediate states. cancel closes the
// channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			// Close may already have closed it.
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close drains background work and closes all subscriptions.
func (c *Controller) Close() error {
	err := c.store.Close()
	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()
	return err
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
	c.publish()
}

// fail records err as a notification. kind is used when err carries none;
// timeouts are always recorded as client.Timeout.
func (c *Controller) fail(kind client.Kind, err error) {
	if k, ok := client.KindOf(err); ok {
		kind = k
	}
	c.logger.Error().Err(err).Str("kind", kind.String()).Msg("operation failed")

	c.mu.Lock()
	c.notifications = append(c.notifications, Notification{Kind: kind, Message: err.Error(), At: time.Now()})
	if over := len(c.notifications) - c.maxNotifications; over > 0 {
		c.notifications = c.notifications[over:]
	}
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) publish() {
	st := c.State()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
