package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"atheneum/internal/modules/library/domain"
	libraryout "atheneum/internal/modules/library/port/out"
	apperrors "atheneum/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type SQLiteBookStore struct {
	db *sql.DB
}

func NewSQLiteBookStore(dbPath string) (*SQLiteBookStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps pragmas and write ordering in a single place
	db.SetMaxOpenConns(1)
	store := &SQLiteBookStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ libraryout.BookStore = (*SQLiteBookStore)(nil)

func (s *SQLiteBookStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteBookStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  author TEXT NOT NULL DEFAULT '',
  file_path TEXT NOT NULL DEFAULT '',
  cursor TEXT NOT NULL DEFAULT '',
  current_page INTEGER NOT NULL DEFAULT 0,
  total_pages INTEGER NOT NULL DEFAULT 0,
  progress REAL NOT NULL DEFAULT 0,
  genre TEXT NOT NULL DEFAULT '',
  last_read_at INTEGER NOT NULL DEFAULT 0,
  added_at INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS sessions (
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  occurred_at INTEGER NOT NULL,
  pages_read INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  max_location INTEGER NOT NULL,
  PRIMARY KEY (book_id, seq)
)`,
		`CREATE TABLE IF NOT EXISTS highlights (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  range_ref TEXT NOT NULL DEFAULT '',
  text TEXT NOT NULL,
  color TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS summaries (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  chapter_name TEXT NOT NULL,
  text TEXT NOT NULL,
  created_at INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS predictions (
  book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  created_at INTEGER NOT NULL,
  text TEXT NOT NULL,
  genre TEXT NOT NULL,
  outcome TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (book_id, created_at)
)`,
		`CREATE INDEX IF NOT EXISTS idx_highlights_book ON highlights(book_id)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_book ON summaries(book_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Storage("migrate", err)
		}
	}
	return nil
}

func (s *SQLiteBookStore) Get(ctx context.Context, id string) (domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, kind, title, author, file_path, cursor, current_page, total_pages, progress, genre, last_read_at, added_at
FROM books WHERE id = ?`, id)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, fmt.Errorf("book %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Book{}, apperrors.Storage("get book", err)
	}
	if err := s.loadChildren(ctx, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *SQLiteBookStore) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, title, author, file_path, cursor, current_page, total_pages, progress, genre, last_read_at, added_at
FROM books ORDER BY last_read_at DESC, added_at DESC`)
	if err != nil {
		return nil, apperrors.Storage("list books", err)
	}
	books := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			_ = rows.Close()
			return nil, apperrors.Storage("scan book", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, apperrors.Storage("list books", err)
	}
	_ = rows.Close()
	for i := range books {
		if err := s.loadChildren(ctx, &books[i]); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// Put replaces the book and all of its sub-collections atomically.
func (s *SQLiteBookStore) Put(ctx context.Context, book domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage("begin put", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO books (id, kind, title, author, file_path, cursor, current_page, total_pages, progress, genre, last_read_at, added_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  kind=excluded.kind,
  title=excluded.title,
  author=excluded.author,
  file_path=excluded.file_path,
  cursor=excluded.cursor,
  current_page=excluded.current_page,
  total_pages=excluded.total_pages,
  progress=excluded.progress,
  genre=excluded.genre,
  last_read_at=excluded.last_read_at,
  added_at=excluded.added_at`,
		book.ID,
		string(book.Kind),
		book.Title,
		book.Author,
		book.FilePath,
		book.Cursor,
		book.CurrentPage,
		book.TotalPages,
		book.Progress,
		string(book.Genre),
		toMillis(book.LastReadAt),
		toMillis(book.AddedAt),
	)
	if err != nil {
		return apperrors.Storage("upsert book", err)
	}
	for _, table := range []string{"sessions", "highlights", "summaries", "predictions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE book_id = ?`, book.ID); err != nil {
			return apperrors.Storage("clear "+table, err)
		}
	}
	for i, session := range book.Sessions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sessions (book_id, seq, occurred_at, pages_read, duration_ms, max_location) VALUES (?, ?, ?, ?, ?, ?)`,
			book.ID, i, toMillis(session.OccurredAt), session.PagesRead, session.DurationMs, session.MaxLocation); err != nil {
			return apperrors.Storage("insert session", err)
		}
	}
	for _, h := range book.Highlights {
		if _, err := tx.ExecContext(ctx, `INSERT INTO highlights (id, book_id, range_ref, text, color, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, book.ID, h.Range, h.Text, string(h.Color), h.Note, toMillis(h.CreatedAt)); err != nil {
			return apperrors.Storage("insert highlight", err)
		}
	}
	for _, summary := range book.Summaries {
		if _, err := tx.ExecContext(ctx, `INSERT INTO summaries (id, book_id, chapter_name, text, created_at) VALUES (?, ?, ?, ?, ?)`,
			summary.ID, book.ID, summary.ChapterName, summary.Text, toMillis(summary.CreatedAt)); err != nil {
			return apperrors.Storage("insert summary", err)
		}
	}
	for _, p := range book.Predictions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO predictions (book_id, created_at, text, genre, outcome) VALUES (?, ?, ?, ?, ?)`,
			book.ID, toMillis(p.CreatedAt), p.Text, string(p.Genre), string(p.Outcome)); err != nil {
			return apperrors.Storage("insert prediction", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Storage("commit put", err)
	}
	return nil
}

func (s *SQLiteBookStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage("begin delete", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, table := range []string{"sessions", "highlights", "summaries", "predictions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE book_id = ?`, id); err != nil {
			return apperrors.Storage("delete "+table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage("delete book", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("book %s: %w", id, apperrors.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Storage("commit delete", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var (
		book              domain.Book
		kind, genre       string
		lastRead, addedAt int64
	)
	if err := row.Scan(&book.ID, &kind, &book.Title, &book.Author, &book.FilePath, &book.Cursor,
		&book.CurrentPage, &book.TotalPages, &book.Progress, &genre, &lastRead, &addedAt); err != nil {
		return domain.Book{}, err
	}
	book.Kind = domain.Kind(kind)
	book.Genre = domain.Genre(genre)
	book.LastReadAt = fromMillis(lastRead)
	book.AddedAt = fromMillis(addedAt)
	return book, nil
}

func (s *SQLiteBookStore) loadChildren(ctx context.Context, book *domain.Book) error {
	rows, err := s.db.QueryContext(ctx, `SELECT occurred_at, pages_read, duration_ms, max_location FROM sessions WHERE book_id = ? ORDER BY seq`, book.ID)
	if err != nil {
		return apperrors.Storage("load sessions", err)
	}
	err = eachRow(rows, func(r rowScanner) error {
		var session domain.Session
		var at int64
		if err := r.Scan(&at, &session.PagesRead, &session.DurationMs, &session.MaxLocation); err != nil {
			return err
		}
		session.OccurredAt = fromMillis(at)
		book.Sessions = append(book.Sessions, session)
		return nil
	})
	if err != nil {
		return apperrors.Storage("load sessions", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, range_ref, text, color, note, created_at FROM highlights WHERE book_id = ? ORDER BY created_at, id`, book.ID)
	if err != nil {
		return apperrors.Storage("load highlights", err)
	}
	err = eachRow(rows, func(r rowScanner) error {
		var h domain.Highlight
		var color string
		var at int64
		if err := r.Scan(&h.ID, &h.Range, &h.Text, &color, &h.Note, &at); err != nil {
			return err
		}
		h.Color = domain.Color(color)
		h.CreatedAt = fromMillis(at)
		book.Highlights = append(book.Highlights, h)
		return nil
	})
	if err != nil {
		return apperrors.Storage("load highlights", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, chapter_name, text, created_at FROM summaries WHERE book_id = ? ORDER BY created_at, id`, book.ID)
	if err != nil {
		return apperrors.Storage("load summaries", err)
	}
	err = eachRow(rows, func(r rowScanner) error {
		var summary domain.Summary
		var at int64
		if err := r.Scan(&summary.ID, &summary.ChapterName, &summary.Text, &at); err != nil {
			return err
		}
		summary.CreatedAt = fromMillis(at)
		book.Summaries = append(book.Summaries, summary)
		return nil
	})
	if err != nil {
		return apperrors.Storage("load summaries", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT created_at, text, genre, outcome FROM predictions WHERE book_id = ? ORDER BY created_at`, book.ID)
	if err != nil {
		return apperrors.Storage("load predictions", err)
	}
	err = eachRow(rows, func(r rowScanner) error {
		var p domain.Prediction
		var genre, outcome string
		var at int64
		if err := r.Scan(&at, &p.Text, &genre, &outcome); err != nil {
			return err
		}
		p.CreatedAt = fromMillis(at)
		p.Genre = domain.Genre(genre)
		p.Outcome = domain.Outcome(outcome)
		book.Predictions = append(book.Predictions, p)
		return nil
	})
	if err != nil {
		return apperrors.Storage("load predictions", err)
	}
	return nil
}

func eachRow(rows *sql.Rows, fn func(rowScanner) error) error {
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
