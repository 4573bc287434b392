package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	CreatedClass    *models.Class
	ExistingClass   *models.Class
	AddedProperties []*models.Property
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	return m.ExistingClass != nil, nil
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return m.ExistingClass, nil
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	m.AddedProperties = append(m.AddedProperties, property)
	return nil
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := &MockSchemaClient{}
	require.NoError(t, EnsureSchema(context.Background(), client))
	require.NotNil(t, client.CreatedClass)

	assert.Equal(t, ClassName, client.CreatedClass.Class)
	assert.Equal(t, "none", client.CreatedClass.Vectorizer)

	expected := map[string]string{
		"repositoryId": "string",
		"namespace":    "string",
		"filePath":     "string",
		"chunkContent": "text",
		"chunkIndex":   "int",
		"totalChunks":  "int",
		"timestamp":    "string",
	}
	got := map[string]string{}
	for _, p := range client.CreatedClass.Properties {
		got[p.Name] = p.DataType[0]
	}
	for name, dt := range expected {
		assert.Equal(t, dt, got[name], "property %s", name)
	}
}

func TestEnsureSchema_BackfillsMissingProperties(t *testing.T) {
	client := &MockSchemaClient{
		ExistingClass: &models.Class{
			Class: ClassName,
			Properties: []*models.Property{
				{Name: "repositoryId", DataType: []string{"string"}},
				{Name: "chunkContent", DataType: []string{"text"}},
			},
		},
	}
	require.NoError(t, EnsureSchema(context.Background(), client))
	assert.Nil(t, client.CreatedClass)

	added := map[string]bool{}
	for _, p := range client.AddedProperties {
		added[p.Name] = true
	}
	assert.True(t, added["namespace"])
	assert.True(t, added["filePath"])
	assert.False(t, added["repositoryId"])
}
