package notestore

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/internal/shardqueue"
)

// Delete removes the note from the local list immediately and closes a
// session open on it. The backend deletion is queued behind any save of the
// same note and uses the note's id as of that moment; notes the backend never
// acknowledged are dropped without a call. If the backend keeps failing the
// note is put back at its former position and a DeleteFailure is passed to
// the failure handler.
//
// The returned error only covers local problems: unknown ids, a delete that
// is already in flight, or a full queue.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		for _, e := range s.slots {
			if e.deleting && e.note.ID == id {
				s.mu.Unlock()
				return ErrDeleteInFlight
			}
		}
		s.mu.Unlock()
		return ErrNoteNotFound
	}

	e := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	e.deleting = true
	e.deletedAt = i
	if s.session != nil && s.session.slot == e.slot {
		s.session = nil
	}
	if !e.durable && e.outstanding == 0 {
		delete(s.slots, e.slot)
		s.mu.Unlock()
		s.logger.Debug().Int64("note_id", id).Msg("notestore: dropped unsaved note")
		return nil
	}
	e.outstanding++
	s.mu.Unlock()

	job := shardqueue.JobFunc(func(jctx context.Context) error {
		return s.runDelete(jctx, e)
	})
	if err := s.exec.Submit(context.WithoutCancel(ctx), slotKey(e.slot), job); err != nil {
		s.mu.Lock()
		e.outstanding--
		s.restoreLocked(e)
		s.mu.Unlock()
		return &OpError{Kind: client.DeleteFailure, NoteID: id, Err: err}
	}
	return nil
}

func (s *Store) runDelete(ctx context.Context, e *entry) error {
	s.mu.Lock()
	durable, id := e.durable, e.note.ID
	s.mu.Unlock()

	var err error
	if durable {
		op := func() error {
			err := s.backend.DeleteNote(ctx, id)
			if err != nil && !client.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		notify := func(err error, wait time.Duration) {
			s.logger.Warn().Err(err).Int64("note_id", id).Dur("retry_in", wait).Msg("notestore: delete failed, retrying")
		}
		err = backoff.RetryNotify(op, s.retryPolicy(ctx, s.cfg.deleteAttempts), notify)
	}

	s.mu.Lock()
	e.outstanding--
	if err == nil {
		if s.slots[e.slot] == e {
			delete(s.slots, e.slot)
		}
		s.mu.Unlock()
		s.changed()
		return nil
	}
	s.restoreLocked(e)
	s.mu.Unlock()
	s.changed()

	opErr := &OpError{Kind: client.DeleteFailure, NoteID: id, Err: err}
	s.logger.Error().Err(err).Int64("note_id", id).Msg("notestore: delete failed, note restored")
	s.reportFailure(opErr)
	return opErr
}

// restoreLocked puts a deleted entry back at its former index, or at the end
// if the list has shrunk since. Entries orphaned by a reload stay gone.
func (s *Store) restoreLocked(e *entry) {
	e.deleting = false
	if s.slots[e.slot] != e {
		return
	}
	pos := e.deletedAt
	if pos > len(s.entries) {
		pos = len(s.entries)
	}
	s.entries = append(s.entries, nil)
	copy(s.entries[pos+1:], s.entries[pos:])
	s.entries[pos] = e
}
