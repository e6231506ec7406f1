package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"studynotes/store"
	"studynotes/types"
)

type SubjectHandler struct {
	store store.DBStorer
}

func NewSubjectHandler(s store.DBStorer) *SubjectHandler {
	return &SubjectHandler{store: s}
}

func (h *SubjectHandler) HandleListSubjects(c *fiber.Ctx) error {
	subjects, err := h.store.ListSubjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(subjects)
}

func (h *SubjectHandler) HandleCreateSubject(c *fiber.Ctx) error {
	var params types.SubjectParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return ErrMissing("Subject name required")
	}

	subject, err := h.store.CreateSubject(c.UserContext(), params.Name)
	if errors.Is(err, store.ErrExists) {
		return ErrConflict("Subject")
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "subject": subject})
}

func (h *SubjectHandler) HandleCreateClass(c *fiber.Ctx) error {
	var params types.ClassParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	class, err := h.store.CreateClass(c.UserContext(), c.Params("subject"), params.Name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound("Subject")
	case errors.Is(err, store.ErrExists):
		return ErrConflict("Class")
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"success": true, "class": class})
}
