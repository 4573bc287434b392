package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"repochat/internal/adapter/github"
	"repochat/internal/config"
	"repochat/internal/embed"
	"repochat/internal/middleware"
	"repochat/internal/vector"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// processTimeout bounds the detached embedding run so a wedged provider
// cannot pin a goroutine forever.
const processTimeout = 30 * time.Minute

// ErrNoFiles is returned when a fetch succeeds but every file was filtered
// out, so there is nothing to embed.
var ErrNoFiles = errors.New("no files found in repository")

type Repository struct {
	ID          int        `json:"id"`
	URL         string     `json:"url"`
	Owner       string     `json:"owner"`
	Name        string     `json:"name"`
	Branch      string     `json:"branch"`
	Path        string     `json:"path,omitempty"`
	Status      string     `json:"status"`
	Vectorized  bool       `json:"vectorized"`
	FileCount   int        `json:"file_count"`
	Files       []string   `json:"files,omitempty"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Counts is the repository breakdown served by the stats endpoint.
type Counts struct {
	Total      int `json:"total"`
	Vectorized int `json:"vectorized"`
	Failed     int `json:"failed"`
}

type Store interface {
	Save(ctx context.Context, repo *Repository) error
	Get(ctx context.Context, id int) (*Repository, error)
	List(ctx context.Context) ([]Repository, error)
	MarkCompleted(ctx context.Context, id int) error
	MarkFailed(ctx context.Context, id int, errMsg string) error
	Delete(ctx context.Context, id int) error
}

type Fetcher interface {
	FetchRepository(ctx context.Context, url string) (*github.FetchResult, error)
}

type Engine interface {
	GenerateEmbeddings(ctx context.Context, files []github.RepositoryFile, repoName string) (*embed.Batch, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, repositoryID int, records []vector.Record, namespace string) error
	DeleteRepository(ctx context.Context, repositoryID int, namespace string) error
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	store   Store
	fetcher Fetcher
	engine  Engine
	vectors VectorStore
	pub     EventPublisher
}

func NewService(store Store, fetcher Fetcher, engine Engine, vectors VectorStore, pub EventPublisher) *Service {
	return &Service{store: store, fetcher: fetcher, engine: engine, vectors: vectors, pub: pub}
}

// Process fetches and filters the repository synchronously, so bad URLs and
// missing repositories surface on the request, then embeds and upserts in a
// detached goroutine. The returned record is in the processing state.
func (s *Service) Process(ctx context.Context, url string) (*Repository, error) {
	result, err := s.fetcher.FetchRepository(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, ErrNoFiles
	}

	files := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, f.Path)
	}

	repo := &Repository{
		URL:       url,
		Owner:     result.Owner,
		Name:      result.Name,
		Branch:    result.Branch,
		Path:      result.Path,
		Status:    StatusProcessing,
		FileCount: len(result.Files),
		Files:     files,
	}
	if err := s.store.Save(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to save repository: %w", err)
	}

	s.publishStatus(ctx, repo.ID, StatusProcessing, "")

	correlationID := middleware.GetCorrelationID(ctx)
	go s.vectorize(correlationID, repo.ID, result)

	return repo, nil
}

// vectorize runs detached from the request. It carries the correlation id
// forward so the async half of a run is traceable in logs.
func (s *Service) vectorize(correlationID string, id int, result *github.FetchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()
	ctx = middleware.WithCorrelationID(ctx, correlationID)

	batch, err := s.engine.GenerateEmbeddings(ctx, result.Files, result.Name)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("embedding generation failed: %w", err))
		return
	}
	batch.Finalize(id)

	namespace := vector.Namespace(result.Name)
	if err := s.vectors.Upsert(ctx, id, batch.Records, namespace); err != nil {
		s.fail(ctx, id, fmt.Errorf("vector upsert failed: %w", err))
		return
	}

	if err := s.store.MarkCompleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to mark repository completed", "error", err, "repository_id", id)
		return
	}

	slog.InfoContext(ctx, "repository vectorized",
		"repository_id", id,
		"namespace", namespace,
		"processed_files", batch.ProcessedFiles,
		"skipped_files", batch.SkippedFiles,
		"total_chunks", batch.TotalChunks)

	s.publishStatus(ctx, id, StatusCompleted, "")
}

func (s *Service) fail(ctx context.Context, id int, err error) {
	slog.ErrorContext(ctx, "repository processing failed", "error", err, "repository_id", id)
	if dbErr := s.store.MarkFailed(ctx, id, err.Error()); dbErr != nil {
		slog.ErrorContext(ctx, "failed to record processing failure", "error", dbErr, "repository_id", id)
	}
	s.publishStatus(ctx, id, StatusFailed, err.Error())
}

func (s *Service) Get(ctx context.Context, id int) (*Repository, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Repository, error) {
	return s.store.List(ctx)
}

// Delete removes the repository's vectors first, then the database row, so a
// vector-store failure leaves the record visible for retry.
func (s *Service) Delete(ctx context.Context, id int) error {
	repo, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	namespace := vector.Namespace(repo.Name)
	if err := s.vectors.DeleteRepository(ctx, id, namespace); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}

	return s.store.Delete(ctx, id)
}

// publishStatus emits a best-effort status event. Publishing failures are
// logged and swallowed; event delivery never gates processing.
func (s *Service) publishStatus(ctx context.Context, id int, status, errMsg string) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"repository_id":  id,
		"status":         status,
		"error":          errMsg,
		"correlation_id": middleware.GetCorrelationID(ctx),
	})
	if err != nil {
		return
	}
	if err := s.pub.Publish(config.TopicRepoStatus, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish status event", "error", err, "repository_id", id)
	}
}

// IsNotFound reports whether the error is any of the fetcher's
// repository-or-path-missing kinds.
func IsNotFound(err error) bool {
	var nf *github.NotFoundError
	var pnf *github.PathNotFoundError
	return errors.As(err, &nf) || errors.As(err, &pnf)
}

// IsBadLocator reports whether the error came from URL parsing.
func IsBadLocator(err error) bool {
	var le *github.LocatorError
	return errors.As(err, &le)
}
