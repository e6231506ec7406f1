package store

import (
	"context"
	"errors"

	"studynotes/types"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type DBStorer interface {
	ListSubjects(context.Context) (map[string]*types.Subject, error)
	CreateSubject(ctx context.Context, name string) (*types.Subject, error)
	CreateClass(ctx context.Context, subject, class string) (*types.Class, error)

	SaveIndex(ctx context.Context, subject, class string, rec types.IndexRecord) error
	GetIndex(ctx context.Context, subject, class string) (*types.IndexRecord, error)

	// AddNote assigns the note a new ID, files it and bumps the class note
	// count, creating the subject and class when they do not exist yet.
	AddNote(ctx context.Context, note types.Note) (*types.Note, error)
	GetNote(ctx context.Context, id int) (*types.Note, error)
	Notes(context.Context) (types.NoteTree, error)

	Close() error
}
