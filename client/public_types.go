package client

import "github.com/quillmind/quillmind/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	Note                = types.Note
	EmbedAndSaveRequest = types.EmbedAndSaveRequest
	AskRequest          = types.AskRequest
	AskResponse         = types.AskResponse
)
