package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/quillmind/quillmind/server/internal/model"
	"github.com/quillmind/quillmind/server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver, verifies
// connectivity and makes sure the schema exists.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the notes table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS notes (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            embedding_json TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            update_time TIMESTAMPTZ NOT NULL DEFAULT now()
        )`)
	return err
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Notes() store.Notes { return &notes{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the connection pool.
func (s *pgStore) Close() error { return s.db.Close() }

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	emb, err := store.EncodeEmbedding(m.Embedding)
	if err != nil {
		return nil, err
	}
	out := *m
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO notes (title, content, embedding_json)
        VALUES ($1,$2,$3)
        RETURNING id, creation_time, update_time
    `, m.Title, m.Content, emb)
	if err := row.Scan(&out.ID, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *notes) Update(ctx context.Context, m *model.Note) (*model.Note, error) {
	emb, err := store.EncodeEmbedding(m.Embedding)
	if err != nil {
		return nil, err
	}
	out := *m
	row := n.db.QueryRowContext(ctx, `
        UPDATE notes SET title=$1, content=$2, embedding_json=$3, update_time=now()
        WHERE id=$4
        RETURNING creation_time, update_time
    `, m.Title, m.Content, emb, m.ID)
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %d: %w", m.ID, model.ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

func (n *notes) Get(ctx context.Context, id int64) (*model.Note, error) {
	row := n.db.QueryRowContext(ctx, `
        SELECT id, title, content, embedding_json, creation_time, update_time FROM notes WHERE id=$1
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
	_, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1`, id)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanNote(row scanner) (*model.Note, error) {
	var (
		out model.Note
		emb string
	)
	if err := row.Scan(&out.ID, &out.Title, &out.Content, &emb, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	vec, err := store.DecodeEmbedding(emb)
	if err != nil {
		return nil, err
	}
	out.Embedding = vec
	return &out, nil
}
