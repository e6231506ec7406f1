package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini generates completions with the Google Gemini API. Attachments are
// uploaded through the File API and removed again once the answer is in.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: API key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Gemini{
		client: cl,
		model:  strings.TrimSpace(model),
		logger: slog.Default(),
	}, nil
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string, att *Attachment) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.2)
	m.ResponseMIMEType = "application/json"

	parts := []genai.Part{}
	if att != nil {
		f, err := g.client.UploadFile(ctx, "", bytes.NewReader(att.Data), &genai.UploadFileOptions{
			DisplayName: att.Name,
			MIMEType:    att.MIMEType,
		})
		if err != nil {
			return "", fmt.Errorf("file upload failed: %w", err)
		}
		g.logger.Info("file uploaded to gemini", "name", f.Name, "mime", f.MIMEType)
		defer func() {
			// Uploaded files expire on their own, a failed delete is not fatal.
			if err := g.client.DeleteFile(context.WithoutCancel(ctx), f.Name); err != nil {
				g.logger.Warn("could not delete uploaded file", "name", f.Name, "error", err)
			}
		}()
		parts = append(parts, genai.FileData{MIMEType: f.MIMEType, URI: f.URI})
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", errors.New("gemini: empty response")
	}
	return txt, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
