// Package storage owns persistence of users and transactions in SQLite.
//
// Every operation returns its error to the caller instead of collapsing
// failures into empty results, so "no transactions" and "store unreachable"
// stay distinguishable. Ownership scoping is enforced in SQL: operations on
// a single transaction always match both id and owner email.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expenseflow/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to a
	// different owner. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is per-connection in SQLite; setting it through the DSN
	// applies it to every pooled connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user with default currency and theme.
func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateEmail
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, currency, theme) VALUES (?, ?, ?, ?)",
		email, passwordHash, core.DefaultCurrency, string(core.ThemeLight))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "email", email)
	return nil
}

// GetUser fetches a user by email.
func (r *SQLiteRepository) GetUser(ctx context.Context, email string) (*core.User, error) {
	var u core.User
	var theme string
	err := r.db.QueryRowContext(ctx,
		"SELECT email, password_hash, currency, theme FROM users WHERE email = ?",
		email).Scan(&u.Email, &u.PasswordHash, &u.Currency, &theme)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Theme, _ = core.ParseTheme(theme)
	return &u, nil
}

// UpdatePassword replaces the stored credential hash.
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE email = ?", passwordHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRows(res)
}

// UpdateCurrency sets the user's preferred currency label.
func (r *SQLiteRepository) UpdateCurrency(ctx context.Context, email, currency string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET currency = ? WHERE email = ?", currency, email)
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	return requireRows(res)
}

// GetCurrency returns the preferred currency, falling back to the default
// when the user is unknown.
func (r *SQLiteRepository) GetCurrency(ctx context.Context, email string) (string, error) {
	var currency string
	err := r.db.QueryRowContext(ctx,
		"SELECT currency FROM users WHERE email = ?", email).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultCurrency, nil
	}
	if err != nil {
		return "", fmt.Errorf("query currency: %w", err)
	}
	return currency, nil
}

// UpdateTheme sets the user's theme preference.
func (r *SQLiteRepository) UpdateTheme(ctx context.Context, email string, theme core.Theme) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET theme = ? WHERE email = ?", string(theme), email)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return requireRows(res)
}

// GetTheme returns the theme preference, light when the user is unknown.
func (r *SQLiteRepository) GetTheme(ctx context.Context, email string) (core.Theme, error) {
	var theme string
	err := r.db.QueryRowContext(ctx,
		"SELECT theme FROM users WHERE email = ?", email).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("query theme: %w", err)
	}
	parsed, err := core.ParseTheme(theme)
	if err != nil {
		return core.ThemeLight, nil
	}
	return parsed, nil
}

// AddTransaction inserts a transaction and returns its assigned id.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (email, type, category, amount, date, remark)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Owner, string(t.Kind), t.Category, t.Amount.String(), t.Date.String(), remarkValue(t.Remark))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"owner", t.Owner,
		"kind", t.Kind,
		"category", t.Category,
		"amount", t.Amount.String())

	return id, nil
}

// ListTransactions returns every transaction owned by owner, ordered by the
// requested sort mode. An owner with no rows gets an empty slice, not an
// error. Rows are fetched without ORDER BY and sorted in memory so all ten
// modes share one type-aware comparator set.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string, mode core.SortMode) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, email, type, category, amount, date, remark FROM transactions WHERE email = ?",
		owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	core.SortTransactions(txns, mode)
	return txns, nil
}

// ListTransactionsByRange is ListTransactions filtered to date inclusive
// between start and end.
func (r *SQLiteRepository) ListTransactionsByRange(ctx context.Context, owner string, start, end core.Date, mode core.SortMode) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, type, category, amount, date, remark
		 FROM transactions WHERE email = ? AND date BETWEEN ? AND ?`,
		owner, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("query transactions by range: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	core.SortTransactions(txns, mode)
	return txns, nil
}

// GetTransaction fetches one transaction scoped to its owner. A correct id
// with the wrong owner yields ErrNotFound; ids are not guessable across
// accounts.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64, owner string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, type, category, amount, date, remark FROM transactions WHERE id = ? AND email = ?",
		id, owner)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction replaces all mutable fields of the row matching both id
// and owner. Zero matched rows (missing id or owner mismatch) is ErrNotFound.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, category = ?, amount = ?, date = ?, remark = ?
		 WHERE id = ? AND email = ?`,
		string(t.Kind), t.Category, t.Amount.String(), t.Date.String(), remarkValue(t.Remark),
		t.ID, t.Owner)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRows(res)
}

// DeleteTransaction deletes at most one row matching both id and owner.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64, owner string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND email = ?", id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRows(res)
}

// DeleteAllTransactions wipes every transaction for a user.
func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE email = ?", owner)
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}

	slog.InfoContext(ctx, "All transactions deleted", "owner", owner)
	return nil
}

// ZeroAllAmounts sets amount to zero for every transaction of every user.
// Rows are kept; only the amount column changes. Runs from the monthly
// maintenance job, outside any request context.
func (r *SQLiteRepository) ZeroAllAmounts(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET amount = ? WHERE type IN (?, ?)",
		core.ZeroAmount.String(), string(core.Income), string(core.Expense))
	if err != nil {
		return fmt.Errorf("zero all amounts: %w", err)
	}

	affected, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Zeroed all transaction amounts", "rows", affected)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var (
		t      core.Transaction
		kind   string
		amount string
		date   string
		remark sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Owner, &kind, &t.Category, &amount, &date, &remark); err != nil {
		return nil, err
	}

	t.Kind = core.Kind(kind)

	parsedAmount, err := core.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	t.Amount = parsedAmount

	parsedDate, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = parsedDate

	if remark.Valid {
		t.Remark = &remark.String
	}
	return &t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	txns := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}

func remarkValue(remark *string) any {
	if remark == nil {
		return nil
	}
	return *remark
}

func requireRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
