package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoteText(t *testing.T) {
	content, ok := noteText([]byte("F = ma"), "forces.txt")
	assert.True(t, ok)
	assert.Equal(t, "F = ma", content)

	content, ok = noteText([]byte("un r\xe9sum\xe9"), "resume.txt")
	assert.False(t, ok)
	assert.Equal(t, "[File content could not be read as text: resume.txt]", content)
}

func TestStoredName(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		original string
		want     string
	}{
		{"My Notes.TXT", "20260304_050607_my-notes.txt"},
		{"../../etc/passwd", "20260304_050607_passwd"},
		{"???.pdf", "20260304_050607_file.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, storedName(tt.original, now))
		})
	}
}

func TestSniffMIME(t *testing.T) {
	assert.Equal(t, "image/png", sniffMIME([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}))
	assert.Equal(t, "text/plain", sniffMIME([]byte("plain notes")))
	assert.Equal(t, "application/octet-stream", sniffMIME([]byte{0x80, 0x81, 0x82}))
}
