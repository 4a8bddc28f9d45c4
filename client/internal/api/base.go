package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	clerrors "github.com/quillmind/quillmind/client/internal/errors"
	"github.com/quillmind/quillmind/client/internal/types"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// send performs one JSON round trip. payload may be nil. On a status other
// than want the response is turned into a classified error; out may be nil
// when no body is expected.
func send(ctx context.Context, httpClient types.HTTPClient, method, url, operation string, payload any, want int, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return clerrors.Permanent(fmt.Errorf("%s: encode request: %w", operation, err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return clerrors.Permanent(fmt.Errorf("%s: build request: %w", operation, err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return clerrors.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		ce := clerrors.NewHTTPError(resp.StatusCode, string(raw), operation)
		if resp.StatusCode == http.StatusNotFound {
			ce.Underlying = fmt.Errorf("%s: %w", operation, types.ErrNotFound)
		}
		var er types.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			ce.Underlying = fmt.Errorf("%w: %s", ce.Underlying, er.Message)
		}
		return ce
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return clerrors.Permanent(fmt.Errorf("%s: decode response: %w", operation, err))
	}
	return nil
}
