package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"studynotes/app/agent"
	"studynotes/index"
	"studynotes/model"
	"studynotes/store"
	"studynotes/types"
)

type NoteHandler struct {
	store    store.DBStorer
	analyzer *agent.Analyzer
	dir      string
	now      func() time.Time
}

func NewNoteHandler(s store.DBStorer, analyzer *agent.Analyzer, uploadDir string) *NoteHandler {
	return &NoteHandler{
		store:    s,
		analyzer: analyzer,
		dir:      uploadDir,
		now:      time.Now,
	}
}

func (h *NoteHandler) HandleUpload(c *fiber.Ctx) error {
	var params types.UploadParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return ErrMissing("Subject and class name required")
	}

	now := h.now()
	up, err := receiveFile(c, h.dir, now)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	mime := sniffMIME(up.Data)
	content, isText := noteText(up.Data, up.OriginalName)

	key := params.IndexKey
	if key == "" {
		key, err = h.matchIndex(c, params.Subject, params.ClassName, content)
		if err != nil {
			return err
		}
	}

	req := agent.NoteRequest{
		Subject:  params.Subject,
		Class:    params.ClassName,
		IndexKey: key,
	}
	if isText {
		req.Content = content
	} else {
		req.File = &model.Attachment{Name: up.OriginalName, MIMEType: mime, Data: up.Data}
	}
	ann, err := h.analyzer.Annotate(ctx, req)
	if err != nil {
		slog.Error("ai analysis failed", "file", up.OriginalName, "error", err)
		ann = agent.Failed(err, req.File != nil)
	}
	agent.Clean(&ann)

	note, err := h.store.AddNote(ctx, types.Note{
		Subject:      params.Subject,
		Class:        params.ClassName,
		IndexKey:     key,
		Filename:     up.Filename,
		OriginalName: up.OriginalName,
		MIMEType:     mime,
		Pages:        pageCount(up.Data, mime),
		Content:      content,
		UploadDate:   now,
		Annotation:   &ann,
		Highlights:   []string{},
		Questions:    []string{},
	})
	if err != nil {
		return err
	}
	slog.Info("note saved", "id", note.ID, "subject", note.Subject, "class", note.Class, "index_key", note.IndexKey)

	return c.JSON(fiber.Map{"success": true, "note_id": note.ID})
}

func (h *NoteHandler) matchIndex(c *fiber.Ctx, subject, class, content string) (string, error) {
	rec, err := h.store.GetIndex(c.UserContext(), subject, class)
	if errors.Is(err, store.ErrNotFound) {
		return index.General, nil
	}
	if err != nil {
		return "", err
	}
	return index.Match(content, rec.Structure), nil
}

func (h *NoteHandler) HandleGetNote(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return ErrInvalidID()
	}
	note, err := h.store.GetNote(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound("Note")
	}
	if err != nil {
		return err
	}
	agent.Clean(note.Annotation)
	return c.JSON(note)
}

// classEntry is an index entry together with the number of notes filed
// under its key.
type classEntry struct {
	index.Entry
	Key       string `json:"key"`
	NoteCount int    `json:"note_count"`
}

func (h *NoteHandler) HandleClass(c *fiber.Ctx) error {
	subject, class := c.Params("subject"), c.Params("class")
	rec, notes, err := h.classData(c, subject, class)
	if err != nil {
		return err
	}

	entries := []classEntry{}
	if rec != nil {
		for _, e := range rec.Structure {
			entries = append(entries, classEntry{
				Entry:     e,
				Key:       e.Key(),
				NoteCount: len(notes[e.Key()]),
			})
		}
	}
	return c.JSON(fiber.Map{
		"subject_name": subject,
		"class_name":   class,
		"structure":    entries,
		"has_index":    rec != nil,
		"class_notes":  notes,
	})
}

func (h *NoteHandler) HandleIndexNotes(c *fiber.Ctx) error {
	subject, class, key := c.Params("subject"), c.Params("class"), c.Params("key")
	rec, notes, err := h.classData(c, subject, class)
	if err != nil {
		return err
	}

	var info *index.Entry
	if rec != nil {
		if e, ok := rec.Structure.Lookup(key); ok {
			info = &e
		}
	}
	keyNotes := notes[key]
	if keyNotes == nil {
		keyNotes = []types.Note{}
	}
	return c.JSON(fiber.Map{
		"subject_name": subject,
		"class_name":   class,
		"index_key":    key,
		"index_info":   info,
		"notes":        keyNotes,
		"summary":      types.NewSummary(keyNotes, h.now()),
	})
}

func (h *NoteHandler) HandleFinalNote(c *fiber.Ctx) error {
	subject, class := c.Params("subject"), c.Params("class")
	rec, notes, err := h.classData(c, subject, class)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"subject_name": subject,
		"class_name":   class,
		"class_notes":  notes,
		"indices":      rec,
	})
}

// classData loads the class index (nil when none was uploaded) and the
// class notes with cleaned annotations.
func (h *NoteHandler) classData(c *fiber.Ctx, subject, class string) (*types.IndexRecord, map[string][]types.Note, error) {
	ctx := c.UserContext()
	rec, err := h.store.GetIndex(ctx, subject, class)
	if errors.Is(err, store.ErrNotFound) {
		rec = nil
	} else if err != nil {
		return nil, nil, err
	}

	tree, err := h.store.Notes(ctx)
	if err != nil {
		return nil, nil, err
	}
	notes := tree.Class(subject, class)
	for _, list := range notes {
		for i := range list {
			agent.Clean(list[i].Annotation)
		}
	}
	return rec, notes, nil
}

func (h *NoteHandler) HandleNoteCounts(c *fiber.Ctx) error {
	tree, err := h.store.Notes(c.UserContext())
	if err != nil {
		return err
	}

	subject, class := c.Params("subject"), c.Params("class")
	switch {
	case subject == "":
		return c.JSON(tree.SubjectCounts())
	case class == "":
		return c.JSON(tree.ClassCounts(subject))
	default:
		return c.JSON(tree.KeyCounts(subject, class))
	}
}
