package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
)

const defaultSaveDelay = 500 * time.Millisecond

// saver batches flushes of one file behind a debounce timer.
type saver struct {
	name         string
	delay        time.Duration
	flush        func() error
	logger       internal.Logger
	saveChan     chan struct{}
	shutdownChan chan struct{}
	done         chan struct{}
	closeOnce    sync.Once
}

func newSaver(name string, delay time.Duration, flush func() error, logger internal.Logger) *saver {
	s := &saver{
		name:         name,
		delay:        delay,
		flush:        flush,
		logger:       logger,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		done:         make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *saver) worker() {
	defer close(s.done)
	timer := time.NewTimer(s.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.delay)
		case <-timer.C:
			if err := s.flush(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", s.name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// touch signals the worker without blocking.
func (s *saver) touch() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// close stops the worker and saves pending data synchronously.
func (s *saver) close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		<-s.done
		err = s.flush()
	})
	return err
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

// loadJSONFile decodes file into v. A missing or empty file is not an error.
func loadJSONFile(file string, v interface{}) error {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// clone deep-copies an entry so callers never share memory with the store.
func clone[E any](e E) (E, error) {
	var out E
	b, err := json.Marshal(e)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// --- entries ---

type fileCollection[E internal.Record] struct {
	entries   map[string]E        // id -> entry
	userIndex map[string][]string // userID -> ids sorted by date descending
	mu        sync.RWMutex
	file      string
	saver     *saver
}

func newFileCollection[E internal.Record](file string, delay time.Duration, logger internal.Logger) (*fileCollection[E], error) {
	c := &fileCollection[E]{
		entries:   make(map[string]E),
		userIndex: make(map[string][]string),
		file:      file,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("storage: failed to load %s: %w", file, err)
	}
	c.saver = newSaver(filepath.Base(file), delay, c.save, logger)
	return c, nil
}

func (c *fileCollection[E]) load() error {
	var list []E
	if err := loadJSONFile(c.file, &list); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range list {
		c.entries[e.RecordID()] = e
		c.userIndex[e.OwnerID()] = append(c.userIndex[e.OwnerID()], e.RecordID())
	}
	for userID := range c.userIndex {
		ids := c.userIndex[userID]
		sort.SliceStable(ids, func(i, j int) bool {
			return c.entries[ids[i]].RecordDate().After(c.entries[ids[j]].RecordDate())
		})
	}
	return nil
}

func (c *fileCollection[E]) save() error {
	c.mu.RLock()
	list := make([]E, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	c.mu.RUnlock()

	return atomicWriteFileJSON(c.file, list)
}

// insertSorted keeps ids ordered by date descending. Caller holds the lock.
func (c *fileCollection[E]) insertSorted(e E) {
	ids := c.userIndex[e.OwnerID()]
	i := sort.Search(len(ids), func(i int) bool {
		return c.entries[ids[i]].RecordDate().Before(e.RecordDate())
	})
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = e.RecordID()
	c.userIndex[e.OwnerID()] = ids
}

// removeIndex drops id from the owner's index. Caller holds the lock.
func (c *fileCollection[E]) removeIndex(userID, id string) {
	ids := c.userIndex[userID]
	for i, existing := range ids {
		if existing == id {
			c.userIndex[userID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func (c *fileCollection[E]) Create(ctx context.Context, entry E) error {
	stored, err := clone(entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[stored.RecordID()]; exists {
		return fmt.Errorf("storage: duplicate id %s", stored.RecordID())
	}
	c.entries[stored.RecordID()] = stored
	c.insertSorted(stored)
	c.saver.touch()
	return nil
}

func (c *fileCollection[E]) List(ctx context.Context, userID string) ([]E, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.userIndex[userID]
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		e, err := clone(c.entries[id])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *fileCollection[E]) Get(ctx context.Context, userID, id string) (E, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.OwnerID() != userID {
		var zero E
		return zero, ErrNotFound
	}
	return clone(e)
}

func (c *fileCollection[E]) Update(ctx context.Context, entry E) error {
	stored, err := clone(entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.entries[stored.RecordID()]
	if !ok || existing.OwnerID() != stored.OwnerID() {
		return ErrNotFound
	}
	c.removeIndex(existing.OwnerID(), existing.RecordID())
	c.entries[stored.RecordID()] = stored
	c.insertSorted(stored)
	c.saver.touch()
	return nil
}

func (c *fileCollection[E]) Delete(ctx context.Context, userID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.OwnerID() != userID {
		return ErrNotFound
	}
	delete(c.entries, id)
	c.removeIndex(userID, id)
	c.saver.touch()
	return nil
}

func (c *fileCollection[E]) Close() error {
	return c.saver.close()
}

// --- users ---

// userRecord is the on-disk user shape; internal.User hides the hash from JSON.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type fileUsers struct {
	users   map[string]*userRecord // id -> user
	byEmail map[string]string      // email -> id
	mu      sync.RWMutex
	file    string
	saver   *saver
}

func newFileUsers(file string, delay time.Duration, logger internal.Logger) (*fileUsers, error) {
	u := &fileUsers{
		users:   make(map[string]*userRecord),
		byEmail: make(map[string]string),
		file:    file,
	}
	var list []*userRecord
	if err := loadJSONFile(file, &list); err != nil {
		return nil, fmt.Errorf("storage: failed to load users: %w", err)
	}
	for _, r := range list {
		u.users[r.ID] = r
		u.byEmail[strings.ToLower(r.Email)] = r.ID
	}
	u.saver = newSaver(filepath.Base(file), delay, u.save, logger)
	return u, nil
}

func (u *fileUsers) save() error {
	u.mu.RLock()
	list := make([]*userRecord, 0, len(u.users))
	for _, r := range u.users {
		copied := *r
		list = append(list, &copied)
	}
	u.mu.RUnlock()
	return atomicWriteFileJSON(u.file, list)
}

func (r *userRecord) toUser() *internal.User {
	return &internal.User{ID: r.ID, Name: r.Name, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

func (u *fileUsers) CreateUser(ctx context.Context, user *internal.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := u.byEmail[email]; taken {
		return ErrDuplicateEmail
	}
	u.users[user.ID] = &userRecord{ID: user.ID, Name: user.Name, Email: email, PasswordHash: user.PasswordHash, CreatedAt: user.CreatedAt}
	u.byEmail[email] = user.ID
	u.saver.touch()
	return nil
}

func (u *fileUsers) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	r, ok := u.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.toUser(), nil
}

func (u *fileUsers) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	id, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return u.users[id].toUser(), nil
}

func (u *fileUsers) Close() error {
	return u.saver.close()
}

// NewFileRepositories opens (or creates) the JSON files under dir.
func NewFileRepositories(dir string, logger internal.Logger) (*Repositories, error) {
	return newFileRepositories(dir, defaultSaveDelay, logger)
}

func newFileRepositories(dir string, delay time.Duration, logger internal.Logger) (repos *Repositories, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	var closers []func() error
	defer func() {
		if err != nil {
			for _, c := range closers {
				_ = c()
			}
		}
	}()

	users, err := newFileUsers(filepath.Join(dir, "users.json"), delay, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, users.Close)
	journals, err := newFileCollection[internal.JournalEntry](filepath.Join(dir, "journals.json"), delay, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, journals.Close)
	meals, err := newFileCollection[internal.MealEntry](filepath.Join(dir, "meals.json"), delay, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, meals.Close)
	sleep, err := newFileCollection[internal.SleepEntry](filepath.Join(dir, "sleep.json"), delay, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, sleep.Close)
	workouts, err := newFileCollection[internal.WorkoutEntry](filepath.Join(dir, "workouts.json"), delay, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, workouts.Close)

	return &Repositories{
		Users:    users,
		Journals: journals,
		Meals:    meals,
		Sleep:    sleep,
		Workouts: workouts,
		closer: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*fileUsers)(nil)
var _ JournalRepository = (*fileCollection[internal.JournalEntry])(nil)
var _ MealRepository = (*fileCollection[internal.MealEntry])(nil)
var _ SleepRepository = (*fileCollection[internal.SleepEntry])(nil)
var _ WorkoutRepository = (*fileCollection[internal.WorkoutEntry])(nil)
