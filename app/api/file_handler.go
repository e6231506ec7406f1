package api

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
)

type FileHandler struct {
	dir string
}

func NewFileHandler(uploadDir string) *FileHandler {
	return &FileHandler{dir: uploadDir}
}

func (h *FileHandler) HandleGetFile(c *fiber.Ctx) error {
	path := filepath.Join(h.dir, filepath.Base(c.Params("filename")))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ErrNotFound("File")
	}
	return c.SendFile(path)
}
