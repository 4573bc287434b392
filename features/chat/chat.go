package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"repochat/internal/adapter/gemini"
	"repochat/internal/vector"
)

const (
	maxTopK = 50

	// minResponseLength guards against degenerate completions; anything
	// shorter is replaced with a fixed apology.
	minResponseLength = 20

	fallbackResponse = "I apologize, but I was unable to generate a helpful answer to that question. Please try rephrasing it."
)

const answerSystemPrompt = `You are a code assistant answering questions about the user's GitHub repositories.
Use the provided repository context to answer. If the context does not contain
the answer, say so instead of guessing. Reference file paths when useful.`

const condensePrompt = `Given the conversation so far and a follow-up question, rephrase the follow-up
question to be a standalone question that captures all relevant context.
Answer with the standalone question only.

Conversation:
%s

Follow-up question: %s`

// Message is one prior conversation turn as submitted by the client. Roles
// other than user/assistant/model are coerced to user rather than rejected.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Source struct {
	RepositoryID int     `json:"repository_id"`
	FilePath     string  `json:"file_path"`
	Score        float32 `json:"score"`
}

type Response struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	QuerySimilar(ctx context.Context, embedding []float32, repositoryIDs []int, namespace string, topK int) ([]vector.Match, error)
}

type Generator interface {
	Complete(ctx context.Context, system string, history []gemini.Turn, prompt string) (string, error)
}

type Service struct {
	embedder  Embedder
	retriever Retriever
	generator Generator

	topK            int
	indexTimeout    time.Duration
	responseTimeout time.Duration
	retry           retryPolicy
}

func NewService(embedder Embedder, retriever Retriever, generator Generator, topK, indexTimeoutSeconds, responseTimeoutSeconds, retryAttempts int) *Service {
	return &Service{
		embedder:        embedder,
		retriever:       retriever,
		generator:       generator,
		topK:            topK,
		indexTimeout:    time.Duration(indexTimeoutSeconds) * time.Second,
		responseTimeout: time.Duration(responseTimeoutSeconds) * time.Second,
		retry:           newRetryPolicy(retryAttempts),
	}
}

// Chat answers a question grounded in the vectors of the given repositories.
// Retrieval runs under the index timeout, generation under the response
// timeout; transient provider failures during generation are retried.
func (s *Service) Chat(ctx context.Context, repositoryIDs []int, message string, history []Message) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if len(repositoryIDs) == 0 {
		return nil, ErrNoRepositories
	}
	if s.topK < 1 || s.topK > maxTopK {
		return nil, fmt.Errorf("top_k must be between 1 and %d, got %d", maxTopK, s.topK)
	}

	turns := coerceHistory(ctx, history)

	indexCtx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()

	question := s.condense(indexCtx, turns, message)

	embedding, err := s.embedder.Embed(indexCtx, question)
	if err != nil {
		return nil, wrapStage("embedding", err)
	}

	matches, err := s.retriever.QuerySimilar(indexCtx, embedding, repositoryIDs, "", s.topK)
	if err != nil {
		return nil, wrapStage("retrieval", err)
	}

	respCtx, cancelResp := context.WithTimeout(ctx, s.responseTimeout)
	defer cancelResp()

	prompt := buildPrompt(matches, message)

	var answer string
	err = s.retry.do(respCtx, func() error {
		var genErr error
		answer, genErr = s.generator.Complete(respCtx, answerSystemPrompt, turns, prompt)
		return genErr
	})
	if err != nil {
		return nil, wrapStage("generation", err)
	}

	if len(strings.TrimSpace(answer)) < minResponseLength {
		slog.WarnContext(ctx, "completion below minimum length, using fallback",
			"length", len(strings.TrimSpace(answer)))
		answer = fallbackResponse
	}

	return &Response{Answer: answer, Sources: sourcesFrom(matches)}, nil
}

// condense rewrites a follow-up question into a standalone one using the
// conversation so far. A condensation failure falls back to the raw message;
// it never fails the chat.
func (s *Service) condense(ctx context.Context, turns []gemini.Turn, message string) string {
	if len(turns) == 0 {
		return message
	}

	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}

	condensed, err := s.generator.Complete(ctx, "", nil, fmt.Sprintf(condensePrompt, b.String(), message))
	if err != nil || strings.TrimSpace(condensed) == "" {
		slog.WarnContext(ctx, "question condensation failed, using raw message", "error", err)
		return message
	}
	return strings.TrimSpace(condensed)
}

// coerceHistory drops malformed turns and normalizes roles to the two the
// model accepts.
func coerceHistory(ctx context.Context, history []Message) []gemini.Turn {
	turns := make([]gemini.Turn, 0, len(history))
	for i, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			slog.WarnContext(ctx, "dropping history turn with empty content",
				"index", i, "role", msg.Role)
			continue
		}
		role := "user"
		switch msg.Role {
		case "model", "assistant", "ai":
			role = "model"
		}
		turns = append(turns, gemini.Turn{Role: role, Content: msg.Content})
	}
	return turns
}

func buildPrompt(matches []vector.Match, message string) string {
	if len(matches) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Repository context:\n\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", m.FilePath, m.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(message)
	return b.String()
}

func sourcesFrom(matches []vector.Match) []Source {
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			RepositoryID: m.RepositoryID,
			FilePath:     m.FilePath,
			Score:        m.Score,
		})
	}
	return sources
}
