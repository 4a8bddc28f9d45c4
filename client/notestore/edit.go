package notestore

import "github.com/quillmind/quillmind/client"

// Create appends a note with the default title and content under a
// provisional id and opens an edit session on it. Nothing is sent to the
// backend.
func (s *Store) Create() client.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := client.Note{ID: s.provisionalIDLocked(), Title: DefaultTitle, Content: DefaultContent}
	e := s.addLocked(n, StateLocal, false)
	s.session = &session{slot: e.slot, draftTitle: n.Title, draftContent: n.Content}
	return n
}

// provisionalIDLocked returns the current millisecond timestamp, bumped until
// it is unique among local notes.
func (s *Store) provisionalIDLocked() int64 {
	id := s.cfg.now().UnixMilli()
	if id <= s.lastProvisional {
		id = s.lastProvisional + 1
	}
	for s.indexLocked(id) >= 0 {
		id++
	}
	s.lastProvisional = id
	return id
}

// BeginEdit opens a session on id seeded from its current fields. Any other
// session is discarded without saving.
func (s *Store) BeginEdit(id int64) (EditSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return EditSession{}, ErrNoteNotFound
	}
	e := s.entries[i]
	s.session = &session{slot: e.slot, draftTitle: e.note.Title, draftContent: e.note.Content}
	return EditSession{NoteID: e.note.ID, DraftTitle: e.note.Title, DraftContent: e.note.Content}, nil
}

// SetDraft replaces the draft fields of the open session.
func (s *Store) SetDraft(title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ErrNoSession
	}
	s.session.draftTitle = title
	s.session.draftContent = content
	return nil
}

// CancelEdit discards the open session, if any.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// Session returns the open session. NoteID always reflects the note's latest
// id, which changes when its first save is acknowledged.
func (s *Store) Session() (EditSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return EditSession{}, false
	}
	e, ok := s.slots[s.session.slot]
	if !ok || e.deleting {
		return EditSession{}, false
	}
	return EditSession{NoteID: e.note.ID, DraftTitle: s.session.draftTitle, DraftContent: s.session.draftContent}, true
}
