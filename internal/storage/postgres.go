package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/padhy-04/LifeSenseAI/internal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const pgUniqueViolation = "23505"

// NewPostgresRepositories connects, applies pending migrations and returns
// repositories backed by one shared pool.
func NewPostgresRepositories(ctx context.Context, dsn string, logger internal.Logger) (*Repositories, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	if err := migratePostgres(dsn, logger); err != nil {
		pool.Close()
		return nil, err
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return newPostgresRepositories(db, logger, func() error {
		err := db.Close()
		pool.Close()
		return err
	}), nil
}

func newPostgresRepositories(db *sqlx.DB, logger internal.Logger, closer func() error) *Repositories {
	return &Repositories{
		Users:    &pgUsers{db: db, logger: logger},
		Journals: &pgDocTable[internal.JournalEntry]{db: db, table: "journals", logger: logger},
		Meals:    &pgDocTable[internal.MealEntry]{db: db, table: "meals", logger: logger},
		Sleep:    &pgDocTable[internal.SleepEntry]{db: db, table: "sleep_entries", logger: logger},
		Workouts: &pgDocTable[internal.WorkoutEntry]{db: db, table: "workouts", logger: logger},
		closer:   closer,
	}
}

// migratePostgres runs the embedded migrations over a dedicated connection,
// since closing the migrate instance also closes its database handle.
func migratePostgres(dsn string, logger internal.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("storage: load migrations: %w", err)
	}
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("storage: open migration connection: %w", err)
	}
	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("storage: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("storage: migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("storage: apply migrations: %w", err)
	}
	version, _, _ := m.Version()
	logger.Infof("postgres schema at version %d", version)
	return nil
}

// --- users ---

type pgUser struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	PasswordHash string       `db:"password_hash"`
	CreatedAt    sql.NullTime `db:"created_at"`
}

func (r pgUser) toUser() *internal.User {
	return &internal.User{ID: r.ID, Name: r.Name, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt.Time}
}

type pgUsers struct {
	db     *sqlx.DB
	logger internal.Logger
}

func (p *pgUsers) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *pgUsers) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	return p.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (p *pgUsers) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return p.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, strings.ToLower(email))
}

func (p *pgUsers) getOne(ctx context.Context, query string, arg string) (*internal.User, error) {
	var row pgUser
	if err := p.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return row.toUser(), nil
}

// --- entries ---

// pgDocTable stores each entry as a JSONB document keyed by id and owner.
type pgDocTable[E internal.Record] struct {
	db     *sqlx.DB
	table  string
	logger internal.Logger
}

func (t *pgDocTable[E]) Create(ctx context.Context, entry E) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, date, doc) VALUES ($1, $2, $3, $4)`, t.table),
		entry.RecordID(), entry.OwnerID(), entry.RecordDate(), doc)
	if err != nil {
		t.logger.Errorf("failed to insert into %s: %v", t.table, err)
		return err
	}
	return nil
}

func (t *pgDocTable[E]) List(ctx context.Context, userID string) ([]E, error) {
	var docs [][]byte
	err := t.db.SelectContext(ctx, &docs,
		fmt.Sprintf(`SELECT doc FROM %s WHERE user_id = $1 ORDER BY date DESC`, t.table), userID)
	if err != nil {
		t.logger.Errorf("failed to query %s: %v", t.table, err)
		return nil, err
	}

	out := make([]E, 0, len(docs))
	for _, doc := range docs {
		var e E
		if err := json.Unmarshal(doc, &e); err != nil {
			t.logger.Errorf("failed to decode %s row: %v", t.table, err)
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (t *pgDocTable[E]) Get(ctx context.Context, userID, id string) (E, error) {
	var e E
	var doc []byte
	err := t.db.GetContext(ctx, &doc,
		fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1 AND user_id = $2`, t.table), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, ErrNotFound
		}
		t.logger.Errorf("failed to query %s: %v", t.table, err)
		return e, err
	}
	err = json.Unmarshal(doc, &e)
	return e, err
}

func (t *pgDocTable[E]) Update(ctx context.Context, entry E) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	res, err := t.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET date = $1, doc = $2 WHERE id = $3 AND user_id = $4`, t.table),
		entry.RecordDate(), doc, entry.RecordID(), entry.OwnerID())
	if err != nil {
		t.logger.Errorf("failed to update %s: %v", t.table, err)
		return err
	}
	return requireAffected(res)
}

func (t *pgDocTable[E]) Delete(ctx context.Context, userID, id string) error {
	res, err := t.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, t.table), id, userID)
	if err != nil {
		t.logger.Errorf("failed to delete from %s: %v", t.table, err)
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*pgUsers)(nil)
var _ JournalRepository = (*pgDocTable[internal.JournalEntry])(nil)
var _ MealRepository = (*pgDocTable[internal.MealEntry])(nil)
var _ SleepRepository = (*pgDocTable[internal.SleepEntry])(nil)
var _ WorkoutRepository = (*pgDocTable[internal.WorkoutEntry])(nil)
