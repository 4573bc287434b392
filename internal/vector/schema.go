package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient defines the Weaviate schema operations needed to ensure the
// CodeChunk class exists.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema creates the CodeChunk class if missing and backfills any
// missing properties on an existing class. Vectors are provided externally,
// so the class carries no vectorizer.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	properties := []*models.Property{
		{Name: "repositoryId", DataType: []string{"string"}},
		{Name: "namespace", DataType: []string{"string"}},
		{Name: "filePath", DataType: []string{"string"}},
		{Name: "fileName", DataType: []string{"string"}},
		{Name: "chunkContent", DataType: []string{"text"}},
		{Name: "chunkIndex", DataType: []string{"int"}},
		{Name: "totalChunks", DataType: []string{"int"}},
		{Name: "byteSize", DataType: []string{"int"}},
		{Name: "isBinary", DataType: []string{"boolean"}},
		{Name: "oid", DataType: []string{"string"}},
		{Name: "webUrl", DataType: []string{"string"}},
		{Name: "rawUrl", DataType: []string{"string"}},
		{Name: "timestamp", DataType: []string{"string"}},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "An embedded chunk of one repository file",
			Vectorizer:  "none",
			Properties:  properties,
		}
		if err := client.CreateClass(ctx, class); err != nil {
			return &ConnectionError{Err: err}
		}
		return nil
	}

	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	existing := make(map[string]bool)
	for _, p := range class.Properties {
		existing[p.Name] = true
	}

	for _, p := range properties {
		if !existing[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return &ConnectionError{Err: err}
			}
		}
	}

	return nil
}
