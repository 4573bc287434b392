package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repochat/internal/config"
	"repochat/internal/vector"
)

type stubVectorStore struct{}

func (s *stubVectorStore) Upsert(_ context.Context, _ int, _ []vector.Record, _ string) error {
	return nil
}

func (s *stubVectorStore) DeleteRepository(_ context.Context, _ int, _ string) error {
	return nil
}

func (s *stubVectorStore) QuerySimilar(_ context.Context, _ []float32, _ []int, _ string, _ int) ([]vector.Match, error) {
	return nil, nil
}

func (s *stubVectorStore) CountChunks(_ context.Context) (int, error) { return 0, nil }

type stubPublisher struct{}

func (s *stubPublisher) Publish(_ string, _ []byte) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		GeminiAPIKey:           "test-key",
		GithubToken:            "test-token",
		EmbedModel:             "gemini-embedding-001",
		EmbedDimension:         3072,
		GenModel:               "gemini-2.5-flash",
		ChunkSize:              3000,
		ChunkOverlap:           200,
		ChatTopK:               10,
		IndexTimeoutSeconds:    30,
		ResponseTimeoutSeconds: 60,
		ChatRetryAttempts:      3,
		ServerPort:             8081,
	}
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, err := New(context.Background(), testConfig(), db, &stubVectorStore{}, &stubPublisher{})
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.NotNil(t, a.Handler)
	defer a.Close()

	// Verify Route (Integration-ish)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_InvalidChunking(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.ChunkOverlap = cfg.ChunkSize

	_, err = New(context.Background(), cfg, db, &stubVectorStore{}, &stubPublisher{})
	assert.Error(t, err)
}

func TestNew_RoutesWired(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a, err := New(context.Background(), testConfig(), db, &stubVectorStore{}, &stubPublisher{})
	require.NoError(t, err)
	defer a.Close()

	// Validation failures prove the handlers are mounted without touching
	// any external dependency.
	req := httptest.NewRequest("POST", "/chat/message", nil)
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest("GET", "/repositories/abc", nil)
	w = httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
