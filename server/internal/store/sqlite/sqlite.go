// Package sqlite is the default single-file note store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillmind/quillmind/server/internal/model"
	"github.com/quillmind/quillmind/server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path with WAL
// journaling and makes sure the schema exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps SQLITE_BUSY out of concurrent saves.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the notes table if it does not exist. Times are unix
// milliseconds.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS notes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            embedding_json TEXT NOT NULL,
            creation_time INTEGER NOT NULL,
            update_time INTEGER NOT NULL
        );`)
	return err
}

// NewWithDB constructs a SQLite-backed store.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Notes() store.Notes { return &notes{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the database handle.
func (s *sqliteStore) Close() error { return s.db.Close() }

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	emb, err := store.EncodeEmbedding(m.Embedding)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := n.db.ExecContext(ctx, `
        INSERT INTO notes (title, content, embedding_json, creation_time, update_time)
        VALUES (?,?,?,?,?)
    `, m.Title, m.Content, emb, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *m
	out.ID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (n *notes) Update(ctx context.Context, m *model.Note) (*model.Note, error) {
	emb, err := store.EncodeEmbedding(m.Embedding)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := n.db.ExecContext(ctx, `
        UPDATE notes SET title=?, content=?, embedding_json=?, update_time=? WHERE id=?
    `, m.Title, m.Content, emb, now.UnixMilli(), m.ID)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if affected == 0 {
		return nil, fmt.Errorf("note %d: %w", m.ID, model.ErrNotFound)
	}
	return n.Get(ctx, m.ID)
}

func (n *notes) Get(ctx context.Context, id int64) (*model.Note, error) {
	row := n.db.QueryRowContext(ctx, `
        SELECT id, title, content, embedding_json, creation_time, update_time FROM notes WHERE id=?
    `, id)
	out, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, model.ErrNotFound)
	}
	return out, err
}

func (n *notes) List(ctx context.Context) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT id, title, content, embedding_json, creation_time, update_time FROM notes ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []*model.Note{}
	for rows.Next() {
		m, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (n *notes) Delete(ctx context.Context, id int64) error {
	_, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanNote(row scanner) (*model.Note, error) {
	var (
		out             model.Note
		emb             string
		created, update int64
	)
	if err := row.Scan(&out.ID, &out.Title, &out.Content, &emb, &created, &update); err != nil {
		return nil, err
	}
	vec, err := store.DecodeEmbedding(emb)
	if err != nil {
		return nil, err
	}
	out.Embedding = vec
	out.CreationTime = time.UnixMilli(created).UTC()
	out.UpdateTime = time.UnixMilli(update).UTC()
	return &out, nil
}
