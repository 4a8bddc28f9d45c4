package types

// AskResponse wraps the plain-text answer returned by the backend.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse mirrors the backend's JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}
