// Package weaviate implements the vector store gateway over a Weaviate
// instance. All records live in one class; repository isolation is carried by
// the namespace property and the repositoryId metadata filter.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"repochat/internal/vector"
)

// upsertBatchSize bounds one batch request to the provider's payload limits.
const upsertBatchSize = 100

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates or patches the CodeChunk class.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// Upsert writes records into the given namespace in sequential batches of
// 100. Object ids derive from the deterministic record id, so a repeated
// upsert overwrites rather than duplicates. The first failing batch aborts
// the remainder.
func (s *Store) Upsert(ctx context.Context, repositoryID int, records []vector.Record, namespace string) error {
	if len(records) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(records))
	for _, rec := range records {
		props := make(map[string]interface{}, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			props[k] = v
		}
		props["namespace"] = namespace

		objects = append(objects, &models.Object{
			Class:      vector.ClassName,
			ID:         strfmt.UUID(vector.ObjectUUID(rec.ID)),
			Properties: props,
			Vector:     models.C11yVector(rec.Values),
		})
	}

	for i := 0; i < len(objects); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(objects) {
			end = len(objects)
		}
		batchNum := i/upsertBatchSize + 1

		resp, err := s.client.Batch().ObjectsBatcher().
			WithObjects(objects[i:end]...).
			Do(ctx)
		if err != nil {
			return &vector.StorageError{Namespace: namespace, Batch: batchNum, Err: err}
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return &vector.StorageError{
					Namespace: namespace,
					Batch:     batchNum,
					Err:       fmt.Errorf("object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message),
				}
			}
		}

		slog.InfoContext(ctx, "vector batch upserted",
			"repository_id", repositoryID, "namespace", namespace,
			"batch", batchNum, "size", end-i)
	}

	return nil
}

// DeleteRepository removes every record in the repository's namespace. There
// is no per-file delete; re-embedding relies on overwrite-by-id instead.
func (s *Store) DeleteRepository(ctx context.Context, repositoryID int, namespace string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"namespace"}).
			WithOperator(filters.Equal).
			WithValueString(namespace)).
		Do(ctx)
	if err != nil {
		return &vector.StorageError{Namespace: namespace, Err: err}
	}

	slog.InfoContext(ctx, "namespace deleted", "repository_id", repositoryID, "namespace", namespace)
	return nil
}

// QuerySimilar returns the topK nearest records by cosine similarity,
// restricted to the given repository ids (stringified in metadata) and,
// when non-empty, to one namespace.
func (s *Store) QuerySimilar(ctx context.Context, embedding []float32, repositoryIDs []int, namespace string, topK int) ([]vector.Match, error) {
	where := buildRepositoryFilter(repositoryIDs, namespace)

	near := s.client.GraphQL().NearVectorArgBuilder().WithVector(embedding)

	fields := []graphql.Field{
		{Name: "repositoryId"},
		{Name: "filePath"},
		{Name: "chunkContent"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	query := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(near).
		WithLimit(topK).
		WithFields(fields...)
	if where != nil {
		query = query.WithWhere(where)
	}

	res, err := query.Do(ctx)
	if err != nil {
		return nil, &vector.RetrievalError{Err: err}
	}
	if len(res.Errors) > 0 {
		return nil, &vector.RetrievalError{Err: fmt.Errorf("graphql error: %v", res.Errors[0].Message)}
	}

	return parseMatches(res.Data), nil
}

// CountChunks returns the total number of stored chunks across all
// namespaces, via the aggregate meta count.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, &vector.RetrievalError{Err: err}
	}
	if len(res.Errors) > 0 {
		return 0, &vector.RetrievalError{Err: fmt.Errorf("graphql error: %v", res.Errors[0].Message)}
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := agg[vector.ClassName].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

func buildRepositoryFilter(repositoryIDs []int, namespace string) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder

	if len(repositoryIDs) > 0 {
		ids := make([]string, len(repositoryIDs))
		for i, id := range repositoryIDs {
			ids[i] = strconv.Itoa(id)
		}
		operands = append(operands, filters.Where().
			WithPath([]string{"repositoryId"}).
			WithOperator(filters.ContainsAny).
			WithValueString(ids...))
	}

	if namespace != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"namespace"}).
			WithOperator(filters.Equal).
			WithValueString(namespace))
	}

	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

func parseMatches(data map[string]models.JSONObject) []vector.Match {
	var matches []vector.Match

	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return matches
	}
	rows, ok := get[vector.ClassName].([]interface{})
	if !ok {
		return matches
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		var m vector.Match
		if v, ok := props["repositoryId"].(string); ok {
			m.RepositoryID, _ = strconv.Atoi(v)
		}
		if v, ok := props["filePath"].(string); ok {
			m.FilePath = v
		}
		if v, ok := props["chunkContent"].(string); ok {
			m.Content = v
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				// Cosine distance is 1 - similarity.
				m.Score = float32(1 - d)
			}
		}

		matches = append(matches, m)
	}
	return matches
}
