package app_test

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repochat/internal/app"
	"repochat/internal/testutils"
)

func TestBootstrap_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	cfg := suite.GetAppConfig()

	// Adjust MigrationPath for test context
	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(b)
	cfg.MigrationPath = fmt.Sprintf("file://%s/../../migrations", basepath)

	deps, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, deps)
	assert.NotNil(t, deps.DB)

	// Verify migration: the repositories table must exist
	var exists bool
	err = deps.DB.QueryRow("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'repositories')").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "repositories table should exist")

	// Verify Weaviate connectivity via a second schema check
	err = deps.VectorStore.EnsureSchema(context.Background())
	assert.NoError(t, err, "Weaviate connectivity check failed")

	// Verify NSQ
	err = deps.NSQProducer.Ping()
	assert.NoError(t, err)
}
