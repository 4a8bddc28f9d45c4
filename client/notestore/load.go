package notestore

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/quillmind/quillmind/client"
)

// LoadAll replaces the local list with the backend's notes. The fetch is
// retried on transient failures; if it never succeeds the list is left empty
// and a LoadFailure is returned.
func (s *Store) LoadAll(ctx context.Context) error {
	var notes []client.Note
	op := func() error {
		var err error
		notes, err = s.backend.GetAllNotes(ctx)
		if err != nil && !client.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().Err(err).Dur("retry_in", wait).Msg("notestore: load failed, retrying")
	}
	err := backoff.RetryNotify(op, s.retryPolicy(ctx, s.cfg.loadAttempts), notify)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.slots = make(map[uint64]*entry)
	s.session = nil
	if err != nil {
		return &OpError{Kind: client.LoadFailure, Err: err}
	}
	for _, n := range notes {
		s.addLocked(n, StateCommitted, true)
	}
	s.logger.Debug().Int("notes", len(notes)).Msg("notestore: loaded")
	return nil
}

func (s *Store) retryPolicy(ctx context.Context, attempts int) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.retryBackoff
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}
