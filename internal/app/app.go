package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"repochat/features/chat"
	"repochat/features/repository"
	"repochat/features/stats"
	"repochat/internal/adapter/gemini"
	"repochat/internal/adapter/github"
	"repochat/internal/config"
	"repochat/internal/embed"
	"repochat/internal/middleware"
	"repochat/internal/vector"
)

// SchemaEnsurer is the slice of the vector store bootstrap needs.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// VectorStore is everything the features need from the vector index.
type VectorStore interface {
	Upsert(ctx context.Context, repositoryID int, records []vector.Record, namespace string) error
	DeleteRepository(ctx context.Context, repositoryID int, namespace string) error
	QuerySimilar(ctx context.Context, embedding []float32, repositoryIDs []int, namespace string, topK int) ([]vector.Match, error)
	CountChunks(ctx context.Context) (int, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler http.Handler
	port    int

	embedder  *gemini.Embedder
	generator *gemini.Generator
}

// New wires the feature services onto their adapters and builds the route
// table. External connections (database, vector index, NSQ) come from
// Bootstrap; provider clients are constructed here since they dial lazily.
func New(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	pub EventPublisher,
) (*App, error) {
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel, cfg.EmbedDimension)
	if err != nil {
		return nil, fmt.Errorf("embedder init error: %w", err)
	}
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("generator init error: %w", err)
	}

	fetcher := github.NewClient(ctx, cfg.GithubToken)

	engine, err := embed.NewEngine(embedder, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("embedding engine init error: %w", err)
	}

	// Feature: Repository
	repoStore := repository.NewPostgresStore(db)
	repoService := repository.NewService(repoStore, fetcher, engine, vecStore, pub)
	repoHandler := repository.NewHandler(repoService)

	// Feature: Chat
	chatService := chat.NewService(embedder, vecStore, generator,
		cfg.ChatTopK, cfg.IndexTimeoutSeconds, cfg.ResponseTimeoutSeconds, cfg.ChatRetryAttempts)
	chatHandler := chat.NewHandler(chatService)

	// Feature: Stats
	statsHandler := stats.NewHandler(repoStore, vecStore)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /repositories/process", middleware.CorrelationID(enableCORS(repoHandler.Process)))
	mux.Handle("GET /repositories", middleware.CorrelationID(enableCORS(repoHandler.List)))
	mux.Handle("GET /repositories/{id}", middleware.CorrelationID(enableCORS(repoHandler.Get)))
	mux.Handle("DELETE /repositories/{id}", middleware.CorrelationID(enableCORS(repoHandler.Delete)))

	mux.Handle("POST /chat/message", middleware.CorrelationID(enableCORS(chatHandler.Message)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:   mux,
		port:      cfg.ServerPort,
		embedder:  embedder,
		generator: generator,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			slog.Warn("failed to close embedder", "error", err)
		}
	}
	if a.generator != nil {
		if err := a.generator.Close(); err != nil {
			slog.Warn("failed to close generator", "error", err)
		}
	}
}
