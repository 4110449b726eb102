//go:build container
// +build container

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest) (tc.Container, string) {
	t.Helper()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	return c, host
}

// exerciseRepositories runs the same ownership scenario against any backend.
func exerciseRepositories(t *testing.T, repos *Repositories) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repos.Users.CreateUser(ctx, &internal.User{ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "h", CreatedAt: now}))
	require.NoError(t, repos.Users.CreateUser(ctx, &internal.User{ID: "u2", Name: "B", Email: "b@x.com", PasswordHash: "h", CreatedAt: now}))
	assert.ErrorIs(t, repos.Users.CreateUser(ctx, &internal.User{ID: "u3", Email: "A@x.com", CreatedAt: now}), ErrDuplicateEmail)

	require.NoError(t, repos.Journals.Create(ctx, internal.JournalEntry{ID: "j1", UserID: "u1", Date: now.Add(-time.Hour), Text: "older", Tags: []string{}}))
	require.NoError(t, repos.Journals.Create(ctx, internal.JournalEntry{ID: "j2", UserID: "u1", Date: now, Text: "newer", Tags: []string{}}))

	list, err := repos.Journals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "j2", list[0].ID)

	_, err = repos.Journals.Get(ctx, "u2", "j1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repos.Journals.Delete(ctx, "u2", "j1"), ErrNotFound)

	updated := list[1]
	updated.Text = "edited"
	require.NoError(t, repos.Journals.Update(ctx, updated))
	got, err := repos.Journals.Get(ctx, "u1", "j1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	require.NoError(t, repos.Journals.Delete(ctx, "u1", "j1"))
	_, err = repos.Journals.Get(ctx, "u1", "j1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepositories_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	c, host := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "lifesense",
			"POSTGRES_PASSWORD": "lifesense",
			"POSTGRES_DB":       "lifesense",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	})

	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://lifesense:lifesense@%s:%s/lifesense?sslmode=disable", host, port.Port())
	repos, err := NewPostgresRepositories(ctx, dsn, internal.NewNopLogger())
	require.NoError(t, err)
	defer repos.Close()

	exerciseRepositories(t, repos)
}

func TestMongoRepositories_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()
	c, host := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections"),
	})

	port, err := c.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	repos, err := NewMongoRepositories(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()), "lifesense_test", internal.NewNopLogger())
	require.NoError(t, err)
	defer repos.Close()

	exerciseRepositories(t, repos)
}
