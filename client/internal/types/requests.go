package types

// EmbedAndSaveRequest is the payload of the embed-and-persist operation.
// All carries the joined context string of every known note.
type EmbedAndSaveRequest struct {
	// ID is set only for notes the backend already acknowledged, letting the
	// backend update the stored record instead of inserting a new one.
	ID    *int64 `json:"id,omitempty"`
	Title string `json:"title"`
	Note  string `json:"note"`
	All   string `json:"all"`
}

// AskRequest is the payload of the question-answering operation.
type AskRequest struct {
	Question     string `json:"question"`
	NotesContext string `json:"notesContext"`
}
