package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repochat/features/repository"
	"repochat/internal/testutils"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	store := repository.NewPostgresStore(suite.DB)
	ctx := context.Background()

	repo := &repository.Repository{
		URL:       "https://github.com/acme/widgets/tree/main",
		Owner:     "acme",
		Name:      "widgets",
		Branch:    "main",
		Status:    repository.StatusProcessing,
		FileCount: 2,
		Files:     []string{"src/main.go", "README.md"},
	}

	require.NoError(t, store.Save(ctx, repo))
	require.NotZero(t, repo.ID)

	got, err := store.Get(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, "widgets", got.Name)
	assert.Equal(t, repository.StatusProcessing, got.Status)
	assert.Equal(t, []string{"src/main.go", "README.md"}, got.Files)
	assert.False(t, got.Vectorized)

	require.NoError(t, store.MarkCompleted(ctx, repo.ID))
	got, err = store.Get(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusCompleted, got.Status)
	assert.True(t, got.Vectorized)
	assert.NotNil(t, got.ProcessedAt)

	require.NoError(t, store.MarkFailed(ctx, repo.ID, "provider down"))
	got, err = store.Get(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, got.Status)
	assert.Equal(t, "provider down", got.Error)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, repo.ID))
	_, err = store.Get(ctx, repo.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
