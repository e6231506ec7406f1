package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studynotes/index"
	"studynotes/store"
	"studynotes/types"
)

type IndexHandler struct {
	store store.DBStorer
	dir   string
	now   func() time.Time
}

func NewIndexHandler(s store.DBStorer, uploadDir string) *IndexHandler {
	return &IndexHandler{
		store: s,
		dir:   uploadDir,
		now:   time.Now,
	}
}

func (h *IndexHandler) HandleUploadIndex(c *fiber.Ctx) error {
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

	content := index.DecodeText(up.Data)
	structure := index.Parse(content)
	rec := types.IndexRecord{
		ID:           uuid.New(),
		Filename:     up.Filename,
		OriginalName: up.OriginalName,
		Content:      content,
		Structure:    structure,
		UploadDate:   now,
	}
	if err := h.store.SaveIndex(c.UserContext(), params.Subject, params.ClassName, rec); err != nil {
		return err
	}
	slog.Info("index parsed", "subject", params.Subject, "class", params.ClassName, "entries", len(structure))

	return c.JSON(fiber.Map{"success": true, "structure": structure})
}

func (h *IndexHandler) HandleGetIndex(c *fiber.Ctx) error {
	rec, err := h.store.GetIndex(c.UserContext(), c.Params("subject"), c.Params("class"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(fiber.Map{"structure": index.Structure{}, "has_index": false})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"structure": rec.Structure, "has_index": true})
}
