package notestore

import (
	"context"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/internal/notectx"
	"github.com/quillmind/quillmind/client/internal/shardqueue"
)

type saveResult struct {
	note client.Note
	err  error
}

// Save persists the open session. The draft is applied locally first and the
// note marked pending; the request carries the context string of every note
// with the draft applied. On success the entry is replaced by the backend's
// canonical note, whose id supersedes a provisional one. On failure the
// previous fields are restored, or the note is dropped if the backend never
// acknowledged it, and a SaveFailure is returned. Saves of the
// same note run one after another in call order.
//
// If ctx ends before the backend answers, Save returns ctx.Err() and the save
// still settles in the background.
func (s *Store) Save(ctx context.Context) (client.Note, error) {
	s.submitMu.Lock()
	s.mu.Lock()
	sess := s.session
	if sess == nil {
		s.mu.Unlock()
		s.submitMu.Unlock()
		return client.Note{}, ErrNoSession
	}
	e, ok := s.slots[sess.slot]
	if !ok || e.deleting {
		s.session = nil
		s.mu.Unlock()
		s.submitMu.Unlock()
		return client.Note{}, ErrNoteNotFound
	}

	e.note.Title = sess.draftTitle
	e.note.Content = sess.draftContent
	e.state = StatePending
	e.gen++
	e.outstanding++
	gen := e.gen
	title, content := e.note.Title, e.note.Content
	all := notectx.Build(s.notesLocked())
	s.mu.Unlock()

	result := make(chan saveResult, 1)
	job := shardqueue.JobFunc(func(jctx context.Context) error {
		n, err := s.runSave(jctx, e, sess, gen, title, content, all)
		result <- saveResult{note: n, err: err}
		return err
	})
	err := s.exec.Submit(context.WithoutCancel(ctx), slotKey(e.slot), job)
	if err != nil {
		err = s.settleSave(e, sess, gen, nil, err)
	}
	s.submitMu.Unlock()
	s.changed()
	if err != nil {
		return client.Note{}, err
	}

	select {
	case r := <-result:
		return r.note, r.err
	case <-ctx.Done():
		return client.Note{}, ctx.Err()
	}
}

func (s *Store) runSave(ctx context.Context, e *entry, sess *session, gen uint64, title, content, all string) (client.Note, error) {
	req := client.EmbedAndSaveRequest{Title: title, Note: content, All: all}
	s.mu.Lock()
	if e.durable {
		id := e.note.ID
		req.ID = &id
	}
	s.mu.Unlock()

	saved, err := s.backend.EmbedAndSave(ctx, req)
	if err == nil && saved == nil {
		err = client.ErrNotFound
	}
	err = s.settleSave(e, sess, gen, saved, err)
	s.changed()
	if err != nil {
		return client.Note{}, err
	}
	return *saved, nil
}

// settleSave applies the outcome of one save. Only the most recent save of a
// note decides its visible fields and state; an older one that finishes first
// still records the acknowledged id.
func (s *Store) settleSave(e *entry, sess *session, gen uint64, saved *client.Note, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.outstanding--
	latest := gen == e.gen
	if s.session == sess {
		s.session = nil
	}

	if err != nil {
		failed := e.note.ID
		switch {
		case latest && !e.durable:
			s.dropLocked(e)
		case latest:
			id := e.note.ID
			e.note = e.base
			e.note.ID = id
			e.state = StateReverted
		}
		s.logger.Warn().Err(err).Int64("note_id", failed).Msg("notestore: save failed")
		return &OpError{Kind: client.SaveFailure, NoteID: failed, Err: err}
	}

	provisional := e.note.ID
	e.durable = true
	e.base = *saved
	if latest {
		e.note = *saved
		e.state = StateCommitted
	} else {
		e.note.ID = saved.ID
	}
	s.logger.Debug().Int64("note_id", saved.ID).Int64("previous_id", provisional).Msg("notestore: saved")
	return nil
}

// dropLocked forgets a note the backend never acknowledged. A queued delete
// of the same slot still owns the slot and releases it when it runs.
func (s *Store) dropLocked(e *entry) {
	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	if s.session != nil && s.session.slot == e.slot {
		s.session = nil
	}
	if !e.deleting && e.outstanding == 0 && s.slots[e.slot] == e {
		delete(s.slots, e.slot)
	}
}
