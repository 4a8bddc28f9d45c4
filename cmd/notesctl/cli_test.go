package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// stubBackend is an in-memory notes backend.
type stubBackend struct {
	mu       sync.Mutex
	notes    []note
	nextID   int64
	lastAll  string
	lastCtx  string
	failSave bool
}

func (b *stubBackend) last() (out struct{ all, ctx string }) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out.all, out.ctx = b.lastAll, b.lastCtx
	return out
}

func (b *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(append([]note{}, b.notes...))
	})
	mux.HandleFunc("POST /api/notes/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID    *int64 `json:"id"`
			Title string `json:"title"`
			Note  string `json:"note"`
			All   string `json:"all"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failSave {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Bad Request","code":400,"message":"rejected"}`))
			return
		}
		b.lastAll = req.All
		if req.ID != nil {
			for i := range b.notes {
				if b.notes[i].ID == *req.ID {
					b.notes[i].Title, b.notes[i].Content = req.Title, req.Note
					w.WriteHeader(http.StatusCreated)
					_ = json.NewEncoder(w).Encode(b.notes[i])
					return
				}
			}
		}
		b.nextID++
		n := note{ID: b.nextID, Title: req.Title, Content: req.Note}
		b.notes = append(b.notes, n)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(n)
	})
	mux.HandleFunc("DELETE /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.notes {
			if b.notes[i].ID == id {
				b.notes = append(b.notes[:i], b.notes[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/llm", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question     string `json:"question"`
			NotesContext string `json:"notesContext"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.lastCtx = req.NotesContext
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "Your notes are about groceries."})
	})
	return mux
}

func runCLI(t *testing.T, url, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--service-url", url}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_AddListEditAskDelete(t *testing.T) {
	b := &stubBackend{}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "", "add", "--title", "Groceries", "--content", "milk, eggs")
	require.NoError(t, err)
	assert.Contains(t, out, "saved note 1")
	assert.Equal(t, "Groceries: milk, eggs", b.last().all)

	out, err = runCLI(t, srv.URL, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tGroceries\tmilk, eggs")

	_, err = runCLI(t, srv.URL, "", "edit", "1", "--content", "milk, eggs, bread")
	require.NoError(t, err)
	assert.Equal(t, "Groceries: milk, eggs, bread", b.last().all)

	out, err = runCLI(t, srv.URL, "", "ask", "What", "are", "my", "notes", "about?")
	require.NoError(t, err)
	assert.Contains(t, out, "Your notes are about groceries.")
	assert.Equal(t, "Groceries: milk, eggs, bread", b.last().ctx)

	out, err = runCLI(t, srv.URL, "", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted note 1")
	b.mu.Lock()
	assert.Empty(t, b.notes)
	b.mu.Unlock()
}

func TestCLI_SaveFailureIsReported(t *testing.T) {
	b := &stubBackend{failSave: true}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	_, err := runCLI(t, srv.URL, "", "add", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SaveFailure")
}

func TestCLI_EditRequiresFlags(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:1", "", "edit", "1")
	assert.ErrorContains(t, err, "--title or --content required")

	_, err = runCLI(t, "http://127.0.0.1:1", "", "delete", "abc")
	assert.ErrorContains(t, err, "invalid note id")
}

func TestCLI_ChatSession(t *testing.T) {
	b := &stubBackend{}
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	script := strings.Join([]string{
		":new Groceries | milk",
		"What are my notes about?",
		"",
		":del 1",
		":notes",
		":quit",
	}, "\n")
	out, err := runCLI(t, srv.URL, script, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "1\tGroceries\tmilk")
	assert.Contains(t, out, "Your notes are about groceries.")
	assert.Contains(t, out, "(no notes)")
	assert.Equal(t, "Groceries: milk", b.last().ctx)
}
