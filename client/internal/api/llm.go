package api

import (
	"context"
	"net/http"

	"github.com/quillmind/quillmind/client/internal/types"
)

// Ask submits a question with its note context and returns the plain-text
// answer (llm_req).
func Ask(ctx context.Context, httpClient types.HTTPClient, baseURL string, req types.AskRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := types.ValidateQuestion(req.Question); err != nil {
		return "", err
	}
	var out types.AskResponse
	if err := send(ctx, httpClient, http.MethodPost, baseURL+"/api/llm", "llm request", req, http.StatusOK, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}
