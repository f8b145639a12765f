package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Rebind rewrites ? placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const (
	joinedColumns = `t.id, t.category_id, t.title, t.transaction_type, t.time, t.amount_cents, t.date, t.note,
		c.id, c.name, c.icon_name, c.color_value, c.is_custom`
	joinedFrom  = ` FROM transactions t JOIN categories c ON c.id = t.category_id`
	newestFirst = ` ORDER BY substr(t.date, 7, 4) DESC, substr(t.date, 4, 2) DESC, substr(t.date, 1, 2) DESC, t.id DESC`
)

// SQLStore implements ledger.Store and session.Preferences on database/sql.
// Amounts are stored as integer cents.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func newSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// Categories

func (s *SQLStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.query(ctx, `SELECT id, name, icon_name, color_value, is_custom FROM categories ORDER BY is_custom DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *SQLStore) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := s.queryRow(ctx,
		`INSERT INTO categories (name, icon_name, color_value, is_custom) VALUES (?, ?, ?, ?) RETURNING id`,
		c.Name, c.IconRef, int64(c.Color), c.IsCustom,
	).Scan(&c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	slog.DebugContext(ctx, "Category stored", "id", c.ID, "name", c.Name, "custom", c.IsCustom)
	return c, nil
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *SQLStore) CategoryByName(ctx context.Context, name string) (core.Category, bool, error) {
	row := s.queryRow(ctx,
		`SELECT id, name, icon_name, color_value, is_custom FROM categories WHERE name = ? ORDER BY id ASC LIMIT 1`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, false, nil
	}
	if err != nil {
		return core.Category{}, false, fmt.Errorf("get category by name: %w", err)
	}
	return c, true, nil
}

func (s *SQLStore) DeleteAllCategories(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("delete all categories: %w", err)
	}
	return nil
}

// Transactions

func (s *SQLStore) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	err := s.queryRow(ctx,
		`INSERT INTO transactions (category_id, title, transaction_type, time, amount_cents, date, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		t.CategoryID, t.Title, int(t.Type), t.Time, core.ToCents(t.Amount), t.Date, t.Note,
	).Scan(&t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.Amount = core.FromCents(core.ToCents(t.Amount))
	slog.DebugContext(ctx, "Transaction stored", "id", t.ID, "date", t.Date, "amount", t.Amount.String())
	return t, nil
}

func (s *SQLStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := s.exec(ctx,
		`UPDATE transactions SET category_id = ?, title = ?, transaction_type = ?, time = ?, amount_cents = ?, date = ?, note = ?
		 WHERE id = ?`,
		t.CategoryID, t.Title, int(t.Type), t.Time, core.ToCents(t.Amount), t.Date, t.Note, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update transaction %d: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteAllTransactions(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	return nil
}

func (s *SQLStore) TransactionByID(ctx context.Context, id int64) (core.TransactionWithCategory, bool, error) {
	row := s.queryRow(ctx, `SELECT `+joinedColumns+joinedFrom+` WHERE t.id = ?`, id)
	twc, err := scanJoined(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionWithCategory{}, false, nil
	}
	if err != nil {
		return core.TransactionWithCategory{}, false, fmt.Errorf("get transaction: %w", err)
	}
	return twc, true, nil
}

// TransactionRow reads the row without the category join.
func (s *SQLStore) TransactionRow(ctx context.Context, id int64) (core.Transaction, bool, error) {
	var (
		t     core.Transaction
		typ   int
		cents int64
	)
	err := s.queryRow(ctx,
		`SELECT id, category_id, title, transaction_type, time, amount_cents, date, note FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.CategoryID, &t.Title, &typ, &t.Time, &cents, &t.Date, &t.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("get transaction row: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.FromCents(cents)
	return t, true, nil
}

func (s *SQLStore) ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error) {
	return s.listJoined(ctx, `SELECT `+joinedColumns+joinedFrom+newestFirst)
}

func (s *SQLStore) TransactionsByMonthYear(ctx context.Context, month, year string) ([]core.TransactionWithCategory, error) {
	return s.listJoined(ctx,
		`SELECT `+joinedColumns+joinedFrom+` WHERE substr(t.date, 4, 2) = ? AND substr(t.date, 7, 4) = ?`+newestFirst,
		month, year)
}

func (s *SQLStore) listJoined(ctx context.Context, query string, args ...any) ([]core.TransactionWithCategory, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.TransactionWithCategory, 0)
	for rows.Next() {
		twc, err := scanJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, twc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// Aggregates

func (s *SQLStore) SumAmounts(ctx context.Context) (decimal.Decimal, error) {
	return s.sum(ctx, "sum amounts", `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions`)
}

func (s *SQLStore) SumIncome(ctx context.Context) (decimal.Decimal, error) {
	return s.sum(ctx, "sum income", `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE amount_cents > 0`)
}

func (s *SQLStore) SumExpense(ctx context.Context) (decimal.Decimal, error) {
	return s.sum(ctx, "sum expense", `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE amount_cents < 0`)
}

func (s *SQLStore) SumExpenseOn(ctx context.Context, date string) (decimal.Decimal, error) {
	return s.sum(ctx, "sum expense on date",
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE amount_cents < 0 AND date = ?`, date)
}

func (s *SQLStore) sum(ctx context.Context, op, query string, args ...any) (decimal.Decimal, error) {
	var cents int64
	if err := s.queryRow(ctx, query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return core.FromCents(cents), nil
}

// Preferences

func (s *SQLStore) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.queryRow(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) ClearPreferences(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(sc scanner) (core.Category, error) {
	var (
		c     core.Category
		color int64
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.IconRef, &color, &c.IsCustom); err != nil {
		return core.Category{}, err
	}
	c.Color = core.Color(uint64(color))
	return c, nil
}

func scanJoined(sc scanner) (core.TransactionWithCategory, error) {
	var (
		t     core.Transaction
		c     core.Category
		typ   int
		cents int64
		color int64
	)
	err := sc.Scan(
		&t.ID, &t.CategoryID, &t.Title, &typ, &t.Time, &cents, &t.Date, &t.Note,
		&c.ID, &c.Name, &c.IconRef, &color, &c.IsCustom,
	)
	if err != nil {
		return core.TransactionWithCategory{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.FromCents(cents)
	c.Color = core.Color(uint64(color))
	return core.TransactionWithCategory{Transaction: t, Category: c}, nil
}
