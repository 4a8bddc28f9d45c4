package types

// Note is a user-authored title/content pair as exchanged with the backend.
type Note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
