package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postMessage(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)
	return rec
}

func TestHandler_Message(t *testing.T) {
	gen := &mockGenerator{responses: []string{"The repository exposes a single HTTP server entrypoint."}}
	h := NewHandler(newTestService(&mockEmbedder{}, &mockRetriever{}, gen))

	rec := postMessage(t, h, `{"message":"what does this repo do?","repository_ids":[5]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.Answer, "entrypoint")
}

func TestHandler_Message_InvalidJSON(t *testing.T) {
	h := NewHandler(newTestService(&mockEmbedder{}, &mockRetriever{}, &mockGenerator{}))

	rec := postMessage(t, h, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Message_MissingRepositories(t *testing.T) {
	h := NewHandler(newTestService(&mockEmbedder{}, &mockRetriever{}, &mockGenerator{}))

	rec := postMessage(t, h, `{"message":"hello","repository_ids":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestHandler_Message_Timeout(t *testing.T) {
	gen := &mockGenerator{errs: []error{context.DeadlineExceeded}}
	h := NewHandler(newTestService(&mockEmbedder{}, &mockRetriever{}, gen))

	rec := postMessage(t, h, `{"message":"slow question","repository_ids":[1]}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandler_Message_InternalError(t *testing.T) {
	gen := &mockGenerator{errs: []error{assertError("boom")}}
	h := NewHandler(newTestService(&mockEmbedder{}, &mockRetriever{}, gen))

	rec := postMessage(t, h, `{"message":"question","repository_ids":[1]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type assertError string

func (e assertError) Error() string { return string(e) }
