package model

import "context"

// Attachment is an uploaded file passed to the model next to the prompt.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Generator produces a free-text completion for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, att *Attachment) (string, error)
}
