package storage

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepos(t *testing.T) (*Repositories, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repos := newPostgresRepositories(sqlx.NewDb(db, "sqlmock"), internal.NewNopLogger(), db.Close)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = repos.Close()
	})
	return repos, mock
}

func TestPostgresUsers_CreateLowercasesEmail(t *testing.T) {
	repos, mock := setupMockRepos(t)
	created := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs("u1", "Ann", "ann@example.com", "hash", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repos.Users.CreateUser(context.Background(), &internal.User{ID: "u1", Name: "Ann", Email: "Ann@Example.com", PasswordHash: "hash", CreatedAt: created})
	assert.NoError(t, err)
}

func TestPostgresUsers_DuplicateEmail(t *testing.T) {
	repos, mock := setupMockRepos(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repos.Users.CreateUser(context.Background(), &internal.User{ID: "u1", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostgresUsers_GetByEmail(t *testing.T) {
	repos, mock := setupMockRepos(t)
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
		AddRow("u1", "Ann", "ann@example.com", "hash", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	u, err := repos.Users.GetUserByEmail(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestPostgresUsers_NotFound(t *testing.T) {
	repos, mock := setupMockRepos(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}))

	_, err := repos.Users.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresEntries_CreateAndList(t *testing.T) {
	repos, mock := setupMockRepos(t)
	ctx := context.Background()
	date := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	entry := internal.SleepEntry{ID: "s1", UserID: "u1", Date: date, DurationHours: 6.5}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sleep_entries (id, user_id, date, doc) VALUES ($1, $2, $3, $4)`)).
		WithArgs("s1", "u1", date, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repos.Sleep.Create(ctx, entry))

	doc, err := json.Marshal(entry)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT doc FROM sleep_entries WHERE user_id = $1 ORDER BY date DESC`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))

	list, err := repos.Sleep.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 6.5, list[0].DurationHours)
	assert.True(t, date.Equal(list[0].Date))
}

func TestPostgresEntries_GetScopedByOwner(t *testing.T) {
	repos, mock := setupMockRepos(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT doc FROM meals WHERE id = $1 AND user_id = $2`)).
		WithArgs("m1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := repos.Meals.Get(context.Background(), "u2", "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresEntries_UpdateAndDeleteNoRows(t *testing.T) {
	repos, mock := setupMockRepos(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE workouts SET date = $1, doc = $2 WHERE id = $3 AND user_id = $4`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "w1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repos.Workouts.Update(ctx, internal.WorkoutEntry{ID: "w1", UserID: "u2"})
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM journals WHERE id = $1 AND user_id = $2`)).
		WithArgs("j1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repos.Journals.Delete(ctx, "u1", "j1"))
}
