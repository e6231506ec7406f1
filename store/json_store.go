package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"studynotes/types"
)

const (
	subjectsFile = "subjects.json"
	indicesFile  = "indices.json"
	notesFile    = "notes.json"
)

type (
	indexDoc map[string]map[string]types.IndexRecord
	notesDoc types.NoteTree
)

// JSONStore keeps every collection as one JSON document on disk. Each write
// rewrites the whole file.
type JSONStore struct {
	dir    string
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}, nil
}

func (s *JSONStore) load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *JSONStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *JSONStore) subjects() (map[string]*types.Subject, error) {
	subjects := make(map[string]*types.Subject)
	if err := s.load(subjectsFile, &subjects); err != nil {
		return nil, err
	}
	for _, subj := range subjects {
		if subj.Classes == nil {
			subj.Classes = make(map[string]*types.Class)
		}
	}
	return subjects, nil
}

func (s *JSONStore) ListSubjects(_ context.Context) (map[string]*types.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subjects()
}

func (s *JSONStore) CreateSubject(_ context.Context, name string) (*types.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjects, err := s.subjects()
	if err != nil {
		return nil, err
	}
	if _, ok := subjects[name]; ok {
		return nil, fmt.Errorf("subject %q: %w", name, ErrExists)
	}

	subj := &types.Subject{
		Name:        name,
		Classes:     make(map[string]*types.Class),
		CreatedDate: s.now(),
	}
	subjects[name] = subj
	if err := s.save(subjectsFile, subjects); err != nil {
		return nil, err
	}
	return subj, nil
}

func (s *JSONStore) CreateClass(_ context.Context, subject, class string) (*types.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjects, err := s.subjects()
	if err != nil {
		return nil, err
	}
	subj, ok := subjects[subject]
	if !ok {
		return nil, fmt.Errorf("subject %q: %w", subject, ErrNotFound)
	}
	if _, ok := subj.Classes[class]; ok {
		return nil, fmt.Errorf("class %q: %w", class, ErrExists)
	}

	c := &types.Class{Name: class, CreatedDate: s.now()}
	subj.Classes[class] = c
	if err := s.save(subjectsFile, subjects); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *JSONStore) SaveIndex(_ context.Context, subject, class string, rec types.IndexRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := indexDoc{}
	if err := s.load(indicesFile, &indices); err != nil {
		return err
	}
	if indices[subject] == nil {
		indices[subject] = make(map[string]types.IndexRecord)
	}
	indices[subject][class] = rec
	return s.save(indicesFile, indices)
}

func (s *JSONStore) GetIndex(_ context.Context, subject, class string) (*types.IndexRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := indexDoc{}
	if err := s.load(indicesFile, &indices); err != nil {
		return nil, err
	}
	rec, ok := indices[subject][class]
	if !ok {
		return nil, fmt.Errorf("index of %s/%s: %w", subject, class, ErrNotFound)
	}
	return &rec, nil
}

func (s *JSONStore) AddNote(_ context.Context, note types.Note) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := notesDoc{}
	if err := s.load(notesFile, &notes); err != nil {
		return nil, err
	}

	maxID := 0
	walk(types.NoteTree(notes), func(n types.Note) bool {
		maxID = max(maxID, n.ID)
		return true
	})
	note.ID = maxID + 1
	types.NoteTree(notes).Add(note)

	subjects, err := s.subjects()
	if err != nil {
		return nil, err
	}
	subj, ok := subjects[note.Subject]
	if !ok {
		subj = &types.Subject{
			Name:        note.Subject,
			Classes:     make(map[string]*types.Class),
			CreatedDate: s.now(),
		}
		subjects[note.Subject] = subj
	}
	c, ok := subj.Classes[note.Class]
	if !ok {
		c = &types.Class{Name: note.Class, CreatedDate: s.now()}
		subj.Classes[note.Class] = c
	}
	c.NoteCount++

	if err := s.save(subjectsFile, subjects); err != nil {
		return nil, err
	}
	if err := s.save(notesFile, notes); err != nil {
		return nil, err
	}

	s.logger.Debug("note stored", "id", note.ID, "subject", note.Subject, "class", note.Class, "index_key", note.IndexKey)
	return &note, nil
}

func (s *JSONStore) GetNote(_ context.Context, id int) (*types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := notesDoc{}
	if err := s.load(notesFile, &notes); err != nil {
		return nil, err
	}

	var found *types.Note
	walk(types.NoteTree(notes), func(n types.Note) bool {
		if n.ID == id {
			found = &n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return found, nil
}

func (s *JSONStore) Notes(_ context.Context) (types.NoteTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := notesDoc{}
	if err := s.load(notesFile, &notes); err != nil {
		return nil, err
	}
	return types.NoteTree(notes), nil
}

func (s *JSONStore) Close() error {
	return nil
}

// walk visits every note until fn returns false.
func walk(tree types.NoteTree, fn func(types.Note) bool) {
	for _, classes := range tree {
		for _, keys := range classes {
			for _, notes := range keys {
				for _, n := range notes {
					if !fn(n) {
						return
					}
				}
			}
		}
	}
}
