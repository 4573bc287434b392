// Package embed turns repository files into embedded vector records.
package embed

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"repochat/internal/adapter/github"
	"repochat/internal/text"
	"repochat/internal/vector"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine splits file content into overlapping chunks and embeds each chunk.
// One failing chunk is logged and skipped; it never discards the file or the
// batch.
type Engine struct {
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
}

func NewEngine(embedder Embedder, chunkSize, chunkOverlap int) (*Engine, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("invalid chunking bounds: size=%d overlap=%d", chunkSize, chunkOverlap)
	}
	return &Engine{embedder: embedder, chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Batch is the outcome of one embedding run. The counts are part of the
// return contract, not logging flavor.
type Batch struct {
	Records        []vector.Record
	ProcessedFiles int
	SkippedFiles   int
	TotalChunks    int
}

// GenerateEmbeddings embeds every non-empty file. Files with empty or
// whitespace-only content, or that produce zero chunks, are counted as
// skipped rather than failing the batch.
func (e *Engine) GenerateEmbeddings(ctx context.Context, files []github.RepositoryFile, repoName string) (*Batch, error) {
	batch := &Batch{}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if strings.TrimSpace(file.Content) == "" {
			batch.SkippedFiles++
			continue
		}

		chunks := text.Split(file.Content, e.chunkSize, e.chunkOverlap)
		if len(chunks) == 0 {
			batch.SkippedFiles++
			continue
		}

		total := len(chunks)
		embedded := 0
		for i, chunk := range chunks {
			if strings.TrimSpace(chunk) == "" {
				continue
			}

			values, err := e.embedder.Embed(ctx, chunk)
			if err != nil {
				slog.WarnContext(ctx, "embedding failed, skipping chunk",
					"error", err, "file", file.Path, "chunk", i+1)
				continue
			}

			idx := i + 1
			batch.Records = append(batch.Records, vector.Record{
				ID:     vector.RecordID(repoName, file.Path, idx),
				Values: values,
				Metadata: map[string]interface{}{
					"fileName":     path.Base(file.Path),
					"filePath":     file.Path,
					"chunkContent": chunk,
					"chunkIndex":   idx,
					"totalChunks":  total,
					"byteSize":     file.ByteSize,
					"isBinary":     file.IsBinary,
					"oid":          file.OID,
					"webUrl":       file.WebURL,
					"rawUrl":       file.RawURL,
				},
			})
			embedded++
		}

		batch.ProcessedFiles++
		batch.TotalChunks += embedded
	}

	slog.InfoContext(ctx, "embedding batch generated",
		"repository", repoName,
		"processed_files", batch.ProcessedFiles,
		"skipped_files", batch.SkippedFiles,
		"total_chunks", batch.TotalChunks)

	return batch, nil
}

// Finalize stamps repository-scoping metadata onto every record. The
// stringified repository id is the sole isolation key for filtered
// retrieval.
func (b *Batch) Finalize(repositoryID int) {
	ts := time.Now().UTC().Format(time.RFC3339)
	id := fmt.Sprintf("%d", repositoryID)
	for i := range b.Records {
		b.Records[i].Metadata["repositoryId"] = id
		b.Records[i].Metadata["timestamp"] = ts
	}
}
