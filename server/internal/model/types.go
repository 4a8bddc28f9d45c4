package model

import "time"

// Note is a persisted note. Embedding is the vector derived at save time and
// never leaves the service.
type Note struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Embedding    []float32 `json:"-"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// EmbedAndSaveRequest is the body of POST /api/notes/embed. ID is set when the
// caller already holds a backend-issued id and wants the note updated.
type EmbedAndSaveRequest struct {
	ID    *int64 `json:"id,omitempty" validate:"omitempty,gt=0"`
	Title string `json:"title" validate:"max=1000"`
	Note  string `json:"note"`
	All   string `json:"all"`
}

// AskRequest is the body of POST /api/llm.
type AskRequest struct {
	Question     string `json:"question" validate:"required"`
	NotesContext string `json:"notesContext"`
}

// AskResponse is returned by POST /api/llm.
type AskResponse struct {
	Answer string `json:"answer"`
}
