package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studynotes/types"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS subjects (
		name TEXT PRIMARY KEY,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS classes (
		subject TEXT NOT NULL REFERENCES subjects(name) ON DELETE CASCADE,
		name TEXT NOT NULL,
		note_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		PRIMARY KEY (subject, name)
	);

	CREATE TABLE IF NOT EXISTS indices (
		subject TEXT NOT NULL,
		class TEXT NOT NULL,
		id UUID NOT NULL,
		filename TEXT NOT NULL,
		original_name TEXT NOT NULL,
		content TEXT NOT NULL,
		structure JSONB NOT NULL,
		uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL,
		PRIMARY KEY (subject, class)
	);

	CREATE TABLE IF NOT EXISTS notes (
		id SERIAL PRIMARY KEY,
		subject TEXT NOT NULL,
		class TEXT NOT NULL,
		index_key TEXT NOT NULL,
		filename TEXT NOT NULL,
		original_name TEXT NOT NULL,
		mime_type TEXT,
		pages INTEGER NOT NULL DEFAULT 0,
		content TEXT NOT NULL,
		uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL,
		annotation JSONB,
		highlights JSONB NOT NULL DEFAULT '[]',
		questions JSONB NOT NULL DEFAULT '[]',
		stars INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_notes_class ON notes(subject, class, index_key);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) ListSubjects(ctx context.Context) (map[string]*types.Subject, error) {
	rows, err := p.pool.Query(ctx, "SELECT name, created_at FROM subjects")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make(map[string]*types.Subject)
	for rows.Next() {
		subj := &types.Subject{Classes: make(map[string]*types.Class)}
		if err := rows.Scan(&subj.Name, &subj.CreatedDate); err != nil {
			return nil, err
		}
		subjects[subj.Name] = subj
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = p.pool.Query(ctx, "SELECT subject, name, note_count, created_at FROM classes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			subject string
			c       types.Class
		)
		if err := rows.Scan(&subject, &c.Name, &c.NoteCount, &c.CreatedDate); err != nil {
			return nil, err
		}
		if subj, ok := subjects[subject]; ok {
			subj.Classes[c.Name] = &c
		}
	}
	return subjects, rows.Err()
}

func (p *PostgresStore) CreateSubject(ctx context.Context, name string) (*types.Subject, error) {
	subj := &types.Subject{Name: name, Classes: make(map[string]*types.Class)}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING created_at`,
		name,
	).Scan(&subj.CreatedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("subject %q: %w", name, ErrExists)
	}
	if err != nil {
		return nil, err
	}
	return subj, nil
}

func (p *PostgresStore) CreateClass(ctx context.Context, subject, class string) (*types.Class, error) {
	var exists bool
	if err := p.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM subjects WHERE name = $1)", subject,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("subject %q: %w", subject, ErrNotFound)
	}

	c := &types.Class{Name: class}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO classes (subject, name) VALUES ($1, $2)
		ON CONFLICT (subject, name) DO NOTHING RETURNING created_at`,
		subject, class,
	).Scan(&c.CreatedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("class %q: %w", class, ErrExists)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *PostgresStore) SaveIndex(ctx context.Context, subject, class string, rec types.IndexRecord) error {
	structure, err := json.Marshal(rec.Structure)
	if err != nil {
		return err
	}
	query := `INSERT INTO indices (subject, class, id, filename, original_name, content, structure, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (subject, class) DO UPDATE SET
			id = EXCLUDED.id,
			filename = EXCLUDED.filename,
			original_name = EXCLUDED.original_name,
			content = EXCLUDED.content,
			structure = EXCLUDED.structure,
			uploaded_at = EXCLUDED.uploaded_at
			`
	_, err = p.pool.Exec(ctx, query,
		subject, class, rec.ID, rec.Filename, rec.OriginalName, rec.Content, structure, rec.UploadDate,
	)
	return err
}

func (p *PostgresStore) GetIndex(ctx context.Context, subject, class string) (*types.IndexRecord, error) {
	var (
		rec       types.IndexRecord
		structure []byte
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, filename, original_name, content, structure, uploaded_at
		FROM indices WHERE subject = $1 AND class = $2`,
		subject, class,
	).Scan(&rec.ID, &rec.Filename, &rec.OriginalName, &rec.Content, &structure, &rec.UploadDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("index of %s/%s: %w", subject, class, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(structure, &rec.Structure); err != nil {
		return nil, fmt.Errorf("decode index structure: %w", err)
	}
	return &rec, nil
}

func (p *PostgresStore) AddNote(ctx context.Context, note types.Note) (*types.Note, error) {
	annotation, err := json.Marshal(note.Annotation)
	if err != nil {
		return nil, err
	}
	highlights, err := json.Marshal(nonNil(note.Highlights))
	if err != nil {
		return nil, err
	}
	questions, err := json.Marshal(nonNil(note.Questions))
	if err != nil {
		return nil, err
	}

	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING",
			note.Subject,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO classes (subject, name, note_count) VALUES ($1, $2, 1)
			ON CONFLICT (subject, name) DO UPDATE SET note_count = classes.note_count + 1`,
			note.Subject, note.Class,
		); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO notes (subject, class, index_key, filename, original_name, mime_type, pages,
				content, uploaded_at, annotation, highlights, questions, stars)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id`,
			note.Subject, note.Class, note.IndexKey, note.Filename, note.OriginalName, note.MIMEType, note.Pages,
			note.Content, note.UploadDate, annotation, highlights, questions, note.Stars,
		).Scan(&note.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return &note, nil
}

const noteColumns = `id, subject, class, index_key, filename, original_name, coalesce(mime_type, ''), pages,
	content, uploaded_at, annotation, highlights, questions, stars`

func scanNote(row pgx.Row) (types.Note, error) {
	var n types.Note
	var annotation, highlights, questions []byte
	if err := row.Scan(
		&n.ID,
		&n.Subject,
		&n.Class,
		&n.IndexKey,
		&n.Filename,
		&n.OriginalName,
		&n.MIMEType,
		&n.Pages,
		&n.Content,
		&n.UploadDate,
		&annotation,
		&highlights,
		&questions,
		&n.Stars); err != nil {
		return n, err
	}
	if len(annotation) > 0 && string(annotation) != "null" {
		n.Annotation = &types.Annotation{}
		if err := json.Unmarshal(annotation, n.Annotation); err != nil {
			return n, fmt.Errorf("decode annotation of note %d: %w", n.ID, err)
		}
	}
	if err := json.Unmarshal(highlights, &n.Highlights); err != nil {
		return n, err
	}
	if err := json.Unmarshal(questions, &n.Questions); err != nil {
		return n, err
	}
	return n, nil
}

func (p *PostgresStore) GetNote(ctx context.Context, id int) (*types.Note, error) {
	n, err := scanNote(p.pool.QueryRow(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *PostgresStore) Notes(ctx context.Context) (types.NoteTree, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+noteColumns+" FROM notes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tree := types.NoteTree{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		tree.Add(n)
	}
	return tree, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		slog.Info("postgres connection pool is closed")
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
