package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileRepos(t *testing.T) (*Repositories, string) {
	dir := t.TempDir()
	repos, err := newFileRepositories(dir, 10*time.Millisecond, internal.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos, dir
}

func journal(id, userID string, date time.Time) internal.JournalEntry {
	return internal.JournalEntry{ID: id, UserID: userID, Date: date, Text: "entry " + id, Tags: []string{"a"}}
}

func TestFileEntries_ListSortedByDateDesc(t *testing.T) {
	repos, _ := setupFileRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repos.Journals.Create(ctx, journal("j1", "u1", now.AddDate(0, 0, -2))))
	require.NoError(t, repos.Journals.Create(ctx, journal("j2", "u1", now)))
	require.NoError(t, repos.Journals.Create(ctx, journal("j3", "u1", now.AddDate(0, 0, -1))))
	require.NoError(t, repos.Journals.Create(ctx, journal("j4", "u2", now)))

	list, err := repos.Journals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "j2", list[0].ID)
	assert.Equal(t, "j3", list[1].ID)
	assert.Equal(t, "j1", list[2].ID)

	empty, err := repos.Journals.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}

func TestFileEntries_OwnershipScoped(t *testing.T) {
	repos, _ := setupFileRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Journals.Create(ctx, journal("j1", "u1", time.Now())))

	_, err := repos.Journals.Get(ctx, "u2", "j1")
	assert.ErrorIs(t, err, ErrNotFound)

	other := journal("j1", "u2", time.Now())
	other.Text = "hijack"
	assert.ErrorIs(t, repos.Journals.Update(ctx, other), ErrNotFound)
	assert.ErrorIs(t, repos.Journals.Delete(ctx, "u2", "j1"), ErrNotFound)

	got, err := repos.Journals.Get(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, "entry j1", got.Text)
}

func TestFileEntries_UpdateReordersAndDelete(t *testing.T) {
	repos, _ := setupFileRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, repos.Journals.Create(ctx, journal("old", "u1", now.AddDate(0, 0, -3))))
	require.NoError(t, repos.Journals.Create(ctx, journal("new", "u1", now)))

	moved := journal("old", "u1", now.AddDate(0, 0, 1))
	require.NoError(t, repos.Journals.Update(ctx, moved))
	list, err := repos.Journals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "old", list[0].ID)

	require.NoError(t, repos.Journals.Delete(ctx, "u1", "old"))
	assert.ErrorIs(t, repos.Journals.Delete(ctx, "u1", "old"), ErrNotFound)
	list, err = repos.Journals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)
}

func TestFileEntries_ReturnsCopies(t *testing.T) {
	repos, _ := setupFileRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Journals.Create(ctx, journal("j1", "u1", time.Now())))

	got, err := repos.Journals.Get(ctx, "u1", "j1")
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := repos.Journals.Get(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Tags)
}

func TestFileRepositories_PersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	repos, err := newFileRepositories(dir, time.Hour, internal.NewNopLogger())
	require.NoError(t, err)

	meal := internal.MealEntry{ID: "m1", UserID: "u1", Date: time.Now().UTC(), MealType: "lunch",
		Foods: []internal.FoodItem{{Name: "rice", Calories: 200}}, TotalCalories: 200, AIAnalysisStatus: internal.AnalysisPending}
	require.NoError(t, repos.Meals.Create(ctx, meal))
	require.NoError(t, repos.Users.CreateUser(ctx, &internal.User{ID: "u1", Name: "Ann", Email: "Ann@Example.com", PasswordHash: "hash"}))
	// Close flushes even though the debounce delay has not elapsed.
	require.NoError(t, repos.Close())

	info, err := os.Stat(filepath.Join(dir, "meals.json"))
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	reopened, err := newFileRepositories(dir, time.Hour, internal.NewNopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Meals.Get(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.TotalCalories)

	u, err := reopened.Users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestFileRepositories_DebouncedSave(t *testing.T) {
	repos, dir := setupFileRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Sleep.Create(ctx, internal.SleepEntry{ID: "s1", UserID: "u1", Date: time.Now()}))

	assert.Eventually(t, func() bool {
		info, err := os.Stat(filepath.Join(dir, "sleep.json"))
		return err == nil && info.Size() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFileUsers_DuplicateEmail(t *testing.T) {
	repos, _ := setupFileRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Users.CreateUser(ctx, &internal.User{ID: "u1", Email: "a@b.com"}))
	err := repos.Users.CreateUser(ctx, &internal.User{ID: "u2", Email: "A@B.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = repos.Users.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepositories_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "journals.json"), []byte("{not json"), 0644))
	_, err := newFileRepositories(dir, time.Hour, internal.NewNopLogger())
	assert.Error(t, err)
}
