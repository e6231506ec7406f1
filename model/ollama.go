package model

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const studySystemPrompt = `You are a study assistant that annotates students' class notes.
Answer only with the JSON object that is asked for, without introductions or markdown.`

// Ollama talks to a local Ollama /api/generate endpoint.
type Ollama struct {
	apiURL string
	model  string
	httpc  *http.Client
}

type OllamaRequest struct {
	Model  string   `json:"model"`
	System string   `json:"system"`
	Prompt string   `json:"prompt"`
	Format string   `json:"format,omitempty"`
	Images []string `json:"images,omitempty"`
}

type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllama(apiURL, model string) *Ollama {
	return &Ollama{
		apiURL: apiURL,
		model:  model,
		httpc:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *Ollama) Name() string { return "ollama/" + o.model }

func (o *Ollama) Generate(ctx context.Context, prompt string, att *Attachment) (string, error) {
	req := OllamaRequest{
		Model:  o.model,
		System: studySystemPrompt,
		Prompt: prompt,
		Format: "json",
	}
	switch {
	case att == nil:
	case strings.HasPrefix(att.MIMEType, "image/"):
		req.Images = []string{base64.StdEncoding.EncodeToString(att.Data)}
	default:
		return "", fmt.Errorf("ollama: file format %s is not supported", att.MIMEType)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Ollama streams one JSON object per line unless stream is disabled, a
	// single object is just the one-line case.
	decoder := json.NewDecoder(resp.Body)
	var b strings.Builder
	for {
		var chunk OllamaResponse
		if err := decoder.Decode(&chunk); err == io.EOF {
			break
		} else if err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		b.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	return b.String(), nil
}
