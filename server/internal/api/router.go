package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quillmind/quillmind/server/internal/api/recovery"
	"github.com/quillmind/quillmind/server/internal/services"
)

// RouterConfig carries what NewRouter needs beyond the service.
type RouterConfig struct {
	APIKey    string
	IsHealthy func() bool
	Logger    zerolog.Logger
}

// NewRouter wires the note routes, health and metrics.
func NewRouter(svc *services.NoteService, cfg RouterConfig) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.New(cfg.Logger), RequestID, Logging(cfg.Logger), APIKeyAuth(cfg.APIKey))

	notes := NewNoteHandler(svc)
	root.HandleFunc("/api/notes", notes.ListNotes).Methods("GET")
	root.HandleFunc("/api/notes/embed", notes.EmbedAndSave).Methods("POST")
	root.HandleFunc("/api/notes/{id}", notes.DeleteNote).Methods("DELETE")
	root.HandleFunc("/api/llm", notes.Ask).Methods("POST")

	health := NewHealthHandler(cfg.IsHealthy)
	root.HandleFunc("/api/health", health.CheckHealth).Methods("GET")

	root.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return root
}
