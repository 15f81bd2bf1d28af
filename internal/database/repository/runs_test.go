package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/frontfrend/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunInsertFinishGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepo(openTestDB(t))
	started := database.Now()

	require.NoError(t, repo.Insert(ctx, Run{
		ID: "r1", RepoURL: "https://github.com/acme/site", Preferences: `{"theme":"light"}`,
		Status: "processing", StartedAt: started,
	}))

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "processing", got.Status)
	require.Nil(t, got.FinishedAt)
	require.True(t, started.Equal(got.StartedAt))

	finished := started.Add(time.Minute)
	require.NoError(t, repo.Finish(ctx, "r1", "completed", "", 3, finished))
	got, err = repo.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "completed", got.Status)
	require.Equal(t, 3, got.FilesChanged)
	require.NotNil(t, got.FinishedAt)
	require.True(t, finished.Equal(*got.FinishedAt))
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepo(openTestDB(t))

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrRunNotFound)
	require.ErrorIs(t, repo.Finish(ctx, "missing", "error", "x", 0, database.Now()), ErrRunNotFound)
}

func TestRecentDistinctRepositories(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepo(openTestDB(t))
	now := database.Now()

	for i, url := range []string{
		"https://github.com/acme/a",
		"https://github.com/acme/b",
		"https://github.com/acme/a",
		"https://github.com/acme/c",
	} {
		require.NoError(t, repo.Insert(ctx, Run{
			ID: string(rune('0' + i)), RepoURL: url, Preferences: "{}", Status: "completed", StartedAt: now,
		}))
	}

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	var urls []string
	for _, r := range recent {
		urls = append(urls, r.RepoURL)
	}
	require.Equal(t, []string{"https://github.com/acme/c", "https://github.com/acme/a", "https://github.com/acme/b"}, urls)
	require.Equal(t, "2", recent[1].ID, "latest run of a repeated repository")

	all, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "3", all[0].ID)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	require.NoError(t, database.Migrate(path))
	require.NoError(t, database.Migrate(path))
}
