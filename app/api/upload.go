package api

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// upload is a file received from a multipart form and written to disk.
type upload struct {
	OriginalName string
	Filename     string
	Data         []byte
}

// receiveFile reads the "file" form field and stores it under dir with a
// timestamped, slugged name so repeated uploads never collide.
func receiveFile(c *fiber.Ctx, dir string, now time.Time) (*upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, ErrMissing("No file uploaded")
	}
	if fileHeader.Filename == "" {
		return nil, ErrMissing("No file selected")
	}

	data, err := readFile(fileHeader)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	name := storedName(fileHeader.Filename, now)
	path := filepath.Join(dir, name)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	slog.Info("file uploaded", "original", fileHeader.Filename, "path", path, "bytes", len(data))

	return &upload{
		OriginalName: fileHeader.Filename,
		Filename:     name,
		Data:         data,
	}, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func storedName(original string, now time.Time) string {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "file"
	}
	return now.Format("20060102_150405") + "_" + stem + ext
}

// noteText returns the note body to store and whether it is real text.
func noteText(data []byte, originalName string) (string, bool) {
	if utf8.Valid(data) {
		return string(data), true
	}
	return fmt.Sprintf("[File content could not be read as text: %s]", originalName), false
}

func sniffMIME(data []byte) string {
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if utf8.Valid(data) {
		return "text/plain"
	}
	return "application/octet-stream"
}

func pageCount(data []byte, mime string) int {
	if mime != "application/pdf" {
		return 0
	}
	n, err := pdfapi.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		slog.Warn("could not count pdf pages", "error", err)
		return 0
	}
	return n
}
