package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quillmind/quillmind/client/internal/types"
)

// GetAllNotes fetches the full persisted note set (getallnotes).
func GetAllNotes(ctx context.Context, httpClient types.HTTPClient, baseURL string) ([]types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var notes []types.Note
	if err := send(ctx, httpClient, http.MethodGet, baseURL+"/api/notes", "get all notes", nil, http.StatusOK, &notes); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []types.Note{}
	}
	return notes, nil
}

// DeleteNote removes a persisted note by id (deletenote). The backend treats
// deletion of an unknown id as success.
func DeleteNote(ctx context.Context, httpClient types.HTTPClient, baseURL string, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateNoteID(id); err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/notes/%d", baseURL, id)
	return send(ctx, httpClient, http.MethodDelete, url, "delete note", nil, http.StatusNoContent, nil)
}

// EmbedAndSave persists a note together with its derived representation and
// returns the canonical record (embedandsave).
func EmbedAndSave(ctx context.Context, httpClient types.HTTPClient, baseURL string, req types.EmbedAndSaveRequest) (*types.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ID != nil {
		if err := types.ValidateNoteID(*req.ID); err != nil {
			return nil, err
		}
	}
	var saved types.Note
	if err := send(ctx, httpClient, http.MethodPost, baseURL+"/api/notes/embed", "embed and save", req, http.StatusCreated, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
