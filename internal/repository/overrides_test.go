package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOverridesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOverridesRepository()

	require.NoError(t, repo.Upsert(ctx, "escalation_threshold", "0.6"))
	require.NoError(t, repo.Upsert(ctx, "ROUTE_LOW", "standard"))
	require.NoError(t, repo.Upsert(ctx, "ROUTE_HIGH", "  "))

	var unknown *UnknownKeyError
	require.ErrorAs(t, repo.Upsert(ctx, "DATABASE_URL", "postgres://elsewhere"), &unknown)

	values, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ESCALATION_THRESHOLD": "0.6",
		"ROUTE_LOW":            "standard",
	}, values)
}

func TestFilterOverridesDropsUnknownKeys(t *testing.T) {
	filtered := filterOverrides(map[string]string{
		"classifier_model": " gpt-5-mini ",
		"OPENAI_API_KEY":   "sk-test",
		"PORT":             "9000",
	})
	assert.Equal(t, map[string]string{"CLASSIFIER_MODEL": "gpt-5-mini"}, filtered)
}

func TestMigrationFilesAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_config_overrides.sql", files[0])
}

func TestPostgresOverridesRepository(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	repo, err := NewPostgresOverridesRepository(ctx, databaseURL)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Upsert(ctx, "MAX_PROMPT_LENGTH", "2000"))
	require.NoError(t, repo.Upsert(ctx, "MAX_PROMPT_LENGTH", "1500"))

	values, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1500", values["MAX_PROMPT_LENGTH"])
}
