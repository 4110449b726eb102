package storage

import (
	"context"
	"errors"

	"github.com/padhy-04/LifeSenseAI/internal"
)

var (
	// ErrNotFound covers both a missing record and one owned by another user.
	ErrNotFound       = errors.New("storage: not found")
	ErrDuplicateEmail = errors.New("storage: email already registered")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
}

// EntryRepository stores user-owned entries. Every lookup is scoped by owner.
type EntryRepository[E internal.Record] interface {
	Create(ctx context.Context, entry E) error
	// List returns the owner's entries ordered by date descending.
	List(ctx context.Context, userID string) ([]E, error)
	Get(ctx context.Context, userID, id string) (E, error)
	// Update replaces the entry matching entry.RecordID() and entry.OwnerID().
	Update(ctx context.Context, entry E) error
	Delete(ctx context.Context, userID, id string) error
}

type (
	JournalRepository = EntryRepository[internal.JournalEntry]
	MealRepository    = EntryRepository[internal.MealEntry]
	SleepRepository   = EntryRepository[internal.SleepEntry]
	WorkoutRepository = EntryRepository[internal.WorkoutEntry]
)

// Repositories bundles one backend's stores.
type Repositories struct {
	Users    UserRepository
	Journals JournalRepository
	Meals    MealRepository
	Sleep    SleepRepository
	Workouts WorkoutRepository
	closer   func() error
}

func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
