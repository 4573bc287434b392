package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"repochat/features/repository"
	"repochat/internal/middleware"
)

type RepoCounter interface {
	Counts(ctx context.Context) (repository.Counts, error)
}

type ChunkCounter interface {
	CountChunks(ctx context.Context) (int, error)
}

type Handler struct {
	repos  RepoCounter
	chunks ChunkCounter
}

func NewHandler(repos RepoCounter, chunks ChunkCounter) *Handler {
	return &Handler{repos: repos, chunks: chunks}
}

type StatsResponse struct {
	Repositories int `json:"repositories"`
	Vectorized   int `json:"vectorized"`
	Failed       int `json:"failed"`
	Chunks       int `json:"chunks"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.repos.Counts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count repositories", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count repositories", http.StatusInternalServerError)
		return
	}

	chunks, err := h.chunks.CountChunks(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count chunks", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count chunks", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Repositories: counts.Total,
		Vectorized:   counts.Vectorized,
		Failed:       counts.Failed,
		Chunks:       chunks,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
