package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres through pgx's database/sql adapter.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the relational persistence gateway. It works on SQLite (the
// default, embedded) and Postgres.
type Store struct {
	db      *sql.DB
	dialect string
	repos
}

// conn is satisfied by *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database and creates missing tables. driver is
// "sqlite" or "postgres".
func Open(driver, dsn string) (*Store, error) {
	var sqlDriver, dia string
	switch driver {
	case "", "sqlite", "sqlite3":
		sqlDriver, dia = "sqlite", dialect.SQLite
	case "postgres", "postgresql", "pgx":
		sqlDriver, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dia == dialect.SQLite {
		// One connection serializes writers, and keeps in-memory databases alive.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dia, repos: repos{c: db, dialect: dia}}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() string {
	return s.dialect
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LLMCalls returns the call log repository. It always uses the store's own
// connection, never a caller's transaction.
func (s *Store) LLMCalls() LLMCallRepo {
	return &llmCallRepo{c: s.db, dialect: s.dialect}
}

// Transaction runs fn with repositories bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(repos{c: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialect.Postgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			manager_id TEXT,
			location TEXT NOT NULL DEFAULT '',
			hire_date TEXT,
			profile TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_employees_manager ON employees (manager_id)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			parent_skill_id TEXT,
			is_future_skill BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			time_horizon_year INTEGER NOT NULL DEFAULT 0,
			business_unit TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			owner_employee_id TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS goal_required_skills (
			goal_id TEXT NOT NULL REFERENCES goals (id) ON DELETE CASCADE,
			skill_id TEXT NOT NULL REFERENCES skills (id) ON DELETE CASCADE,
			target_level INTEGER NOT NULL,
			importance_weight DOUBLE PRECISION NOT NULL,
			required_by_year INTEGER NOT NULL DEFAULT 0,
			seq BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (goal_id, skill_id)
		)`,
		`CREATE TABLE IF NOT EXISTS learning_modules (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER,
			difficulty_level DOUBLE PRECISION,
			language TEXT NOT NULL DEFAULT 'en',
			skills TEXT NOT NULL DEFAULT '[]',
			content TEXT,
			is_generated BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS learning_module_skills (
			module_id TEXT NOT NULL REFERENCES learning_modules (id) ON DELETE CASCADE,
			skill_id TEXT NOT NULL,
			PRIMARY KEY (module_id, skill_id)
		)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL REFERENCES employees (id) ON DELETE CASCADE,
			skill_id TEXT NOT NULL,
			questions TEXT NOT NULL,
			answers TEXT,
			correct_answers TEXT,
			score DOUBLE PRECISION,
			difficulty_level DOUBLE PRECISION NOT NULL,
			readiness_score DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			estimated_duration_minutes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			completed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_employee ON assessments (employee_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS llm_calls (
			id ` + serial + `,
			created_at TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite file path in priority order:
// SKILLMAP_DB, $XDG_DATA_HOME/skillmap/skillmap.db,
// ~/.local/share/skillmap/skillmap.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SKILLMAP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "skillmap", "skillmap.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

type repos struct {
	c       conn
	dialect string
}

func (r repos) b() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r repos) Employees() EmployeeRepo     { return employeeRepo{r} }
func (r repos) Skills() SkillRepo           { return skillRepo{r} }
func (r repos) Goals() GoalRepo             { return goalRepo{r} }
func (r repos) Modules() ModuleRepo         { return moduleRepo{r} }
func (r repos) Assessments() AssessmentRepo { return assessmentRepo{r} }

type querier interface {
	Query() (string, []any)
}

func (r repos) exec(ctx context.Context, q querier) (sql.Result, error) {
	query, args := q.Query()
	return r.c.ExecContext(ctx, query, args...)
}

func (r repos) query(ctx context.Context, q querier) (*sql.Rows, error) {
	query, args := q.Query()
	return r.c.QueryContext(ctx, query, args...)
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(ns sql.NullString, v any) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), v)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
