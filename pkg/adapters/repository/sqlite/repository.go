package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/query"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// NoLimit asks List for every row
const NoLimit = -1

const selectColumns = `SELECT id, URL, metadata, tags, "desc" FROM bookmarks`

type SQLiteRepository struct {
	db  *sql.DB
	log logger.Logger
}

// Open creates the parent directory of path if needed and opens the store there.
func Open(path string, log logger.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating database directory: %w", domain.ErrStorageUnavailable, err)
	}
	return NewSQLiteRepository(path, log)
}

// OpenDefault opens the store at the per-user default location.
func OpenDefault(log logger.Logger) (*SQLiteRepository, error) {
	path, err := config.DefaultDatabasePath()
	if err != nil {
		return nil, err
	}
	return Open(path, log)
}

// NewSQLiteRepository opens dsn (a file path or file: URI) and makes sure the
// bookmarks table exists.
func NewSQLiteRepository(dsn string, log logger.Logger) (*SQLiteRepository, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.String("component", "store"))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorageUnavailable, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorageUnavailable, err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrSchemaInit, err)
	}

	log.Debug("SQLite store initialized", logger.String("path", dsn))
	return &SQLiteRepository{db: db, log: log}, nil
}

// migrate creates the table if it is missing. Column names follow the buku
// layout so existing buku databases open unchanged; flags is never read.
func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		URL TEXT NOT NULL UNIQUE,
		metadata TEXT DEFAULT '',
		tags TEXT DEFAULT ',',
		"desc" TEXT DEFAULT '',
		flags INTEGER DEFAULT 0
	);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Insert(ctx context.Context, row domain.BookmarkRow) (int64, error) {
	query := `INSERT INTO bookmarks (URL, metadata, tags, "desc") VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, row.URL, row.Title, row.Tags, row.Description)
	if err != nil {
		return 0, classify("inserting bookmark", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("reading inserted id", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.BookmarkRow, error) {
	var row domain.BookmarkRow
	err := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id).Scan(
		&row.ID, &row.URL, &row.Title, &row.Tags, &row.Description,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify("getting bookmark", err)
	}
	return &row, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, changes domain.RowChanges) error {
	var sets []string
	var args []interface{}

	if changes.URL != nil {
		sets = append(sets, "URL = ?")
		args = append(args, *changes.URL)
	}
	if changes.Title != nil {
		sets = append(sets, "metadata = ?")
		args = append(args, *changes.Title)
	}
	if changes.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *changes.Tags)
	}
	if changes.Description != nil {
		sets = append(sets, `"desc" = ?`)
		args = append(args, *changes.Description)
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE bookmarks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return classify("updating bookmark", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id); err != nil {
		return classify("deleting bookmark", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]domain.BookmarkRow, error) {
	query := selectColumns + ` ORDER BY id DESC`
	args := []interface{}{}

	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.queryRows(ctx, query, args...)
}

func (r *SQLiteRepository) Find(ctx context.Context, filter query.Filter) ([]domain.BookmarkRow, error) {
	q := selectColumns + ` WHERE ` + filter.Where + ` ORDER BY id DESC`
	return r.queryRows(ctx, q, filter.Args...)
}

// queryRows runs a bulk read. Rows that fail to scan (legacy NULL columns and
// the like) are skipped so one bad row does not hide the rest.
func (r *SQLiteRepository) queryRows(ctx context.Context, query string, args ...interface{}) ([]domain.BookmarkRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("querying bookmarks", err)
	}
	defer rows.Close()

	out := []domain.BookmarkRow{}
	for rows.Next() {
		var row domain.BookmarkRow
		if err := rows.Scan(&row.ID, &row.URL, &row.Title, &row.Tags, &row.Description); err != nil {
			r.log.Debug("skipping unreadable row", logger.Error(err))
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("reading bookmarks", err)
	}
	return out, nil
}

// TagFields returns the raw tags column of every bookmark with a non-empty set.
func (r *SQLiteRepository) TagFields(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tags FROM bookmarks WHERE tags != ','`)
	if err != nil {
		return nil, classify("querying tags", err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			r.log.Debug("skipping unreadable tags", logger.Error(err))
			continue
		}
		fields = append(fields, tags)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("reading tags", err)
	}
	return fields, nil
}

// ReplaceTag rewrites every occurrence of from with to in the tags column and
// reports how many rows changed. SQLite's REPLACE skips overlapping matches
// (",a,a," only loses its first ",a,"), so the statement is repeated until no
// row contains from. All passes share one transaction.
func (r *SQLiteRepository) ReplaceTag(ctx context.Context, from, to string) (int64, error) {
	if from == "" || from == to {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("starting tag rewrite", err)
	}
	defer tx.Rollback()

	query := `UPDATE bookmarks SET tags = REPLACE(tags, ?, ?) WHERE instr(tags, ?) > 0`

	var total int64
	for {
		res, err := tx.ExecContext(ctx, query, from, to, from)
		if err != nil {
			return 0, classify("rewriting tags", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, classify("rewriting tags", err)
		}
		if total == 0 {
			total = n
		}
		// to containing from would never converge
		if n == 0 || strings.Contains(to, from) {
			break
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("committing tag rewrite", err)
	}
	return total, nil
}

func classify(op string, err error) error {
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrConstraintViolation, op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// isConstraintViolation checks for SQLite constraint errors, e.g.
// "constraint failed: UNIQUE constraint failed: bookmarks.URL (2067)"
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}

// Ensure interface compliance
var _ ports.BookmarkRepository = (*SQLiteRepository)(nil)
