package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with two extra SQL functions: ulower(), a
// Unicode-aware lower() (the built-in only folds ASCII), and detail_values(),
// the lowercased detail values of a data column, one per line.
const driverName = "sqlite3_acctdesk"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("ulower", strings.ToLower, true); err != nil {
				return err
			}
			return conn.RegisterFunc("detail_values", detailValues, true)
		},
	})
}

func detailValues(data string) string {
	var m map[string]*string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return ""
	}
	values := make([]string, 0, len(m))
	for _, v := range m {
		if v != nil {
			values = append(values, strings.ToLower(*v))
		}
	}
	return strings.Join(values, "\n")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Account status values. Deleted accounts stay in the table.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Store wraps the SQLite database and exposes higher-level helpers.
type Store struct {
	db   *sql.DB
	path string
}

// Account is a named record with free-form details. A nil detail value is a
// key without a value.
type Account struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Data      map[string]*string `json:"data"`
	Status    string             `json:"-"`
	CreatedAt time.Time          `json:"-"`
}

var (
	// ErrAccountExists indicates a duplicate active account name.
	ErrAccountExists = errors.New("account already exists")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidAccount indicates an account without a name.
	ErrInvalidAccount = errors.New("account name required")
)

// Open bootstraps the SQLite store at path, or at the default location when
// path is empty.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = resolveDBPath(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps SQLite writes serialized.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases DB resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func resolveDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.Getenv("HOME")
		if base == "" {
			return "", fmt.Errorf("cannot resolve data dir: %w", err)
		}
	}
	dir := filepath.Join(base, "acctdesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create db dir: %w", err)
	}
	return filepath.Join(dir, "accounts.db"), nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            data TEXT NOT NULL DEFAULT '{}',
            status TEXT NOT NULL DEFAULT 'active',
            created_at TEXT NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ix_accounts_active_name
            ON accounts(name) WHERE status = 'active';`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

const selectAccount = `SELECT id, name, data, status, created_at FROM accounts`

// Search performs a case-insensitive substring search on active account names
// and details. An empty term or "*" lists every active account.
func (s *Store) Search(ctx context.Context, term string) ([]Account, error) {
	term = strings.TrimSpace(term)
	if term == "" || term == "*" {
		return s.query(ctx, selectAccount+` WHERE status = 'active' ORDER BY name COLLATE NOCASE`)
	}
	like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return s.query(ctx, selectAccount+` WHERE status = 'active'
		AND (ulower(name) LIKE ? ESCAPE '\' OR detail_values(data) LIKE ? ESCAPE '\')
		ORDER BY name COLLATE NOCASE`, like, like)
}

// ByIDs loads the active accounts among ids, ordered by id. Unknown ids are skipped.
func (s *Store) ByIDs(ctx context.Context, ids []int64) ([]Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.query(ctx, selectAccount+` WHERE status = 'active' AND id IN (`+marks+`) ORDER BY id`, args...)
}

// ByID retrieves an active account by its identifier.
func (s *Store) ByID(ctx context.Context, id int64) (*Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+` WHERE id = ? AND status = 'active'`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &account, nil
}

// Create inserts a new account enforcing uniqueness among active accounts.
func (s *Store) Create(ctx context.Context, a *Account) error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidAccount
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	data, err := encodeData(a.Data)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO accounts (name, data, status, created_at) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(a.Name), data, StatusActive, a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraint(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.Status = StatusActive
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// Update replaces the name and details of an active account.
func (s *Store) Update(ctx context.Context, a *Account) error {
	if a == nil {
		return fmt.Errorf("nil account")
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidAccount
	}
	data, err := encodeData(a.Data)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET name = ?, data = ? WHERE id = ? AND status = 'active'`,
		strings.TrimSpace(a.Name), data, a.ID)
	if err != nil {
		if isUniqueConstraint(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("update account: %w", err)
	}
	return expectOne(res)
}

// SoftDelete marks an active account as deleted.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET status = ? WHERE id = ? AND status = 'active'`, StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return expectOne(res)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("accounts rows: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(rs rowScanner) (Account, error) {
	var a Account
	var data, created string
	if err := rs.Scan(&a.ID, &a.Name, &data, &a.Status, &created); err != nil {
		return Account{}, err
	}
	a.Data = map[string]*string{}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &a.Data); err != nil {
			return Account{}, fmt.Errorf("decode data of account %d: %w", a.ID, err)
		}
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		a.CreatedAt = t
	}
	return a, nil
}

func encodeData(data map[string]*string) (string, error) {
	if data == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode account data: %w", err)
	}
	return string(raw), nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueConstraint(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
