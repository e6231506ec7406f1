package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"studynotes/index"
	"studynotes/model"
	"studynotes/types"
)

// NoteRequest is one note to annotate. When File is set the model reads the
// file itself, otherwise Content is placed in the prompt.
type NoteRequest struct {
	Subject  string
	Class    string
	IndexKey string
	Content  string
	File     *model.Attachment
}

type Options struct {
	Attempts   uint
	Delay      time.Duration
	TokenLimit int
}

// Analyzer asks a generative model for a study annotation of a note.
type Analyzer struct {
	gen    model.Generator
	opts   Options
	logger *slog.Logger
}

// NewAnalyzer returns an analyzer; a nil generator means AI analysis is
// switched off and every note gets the Unavailable annotation.
func NewAnalyzer(gen model.Generator, opts Options) *Analyzer {
	if opts.Attempts == 0 {
		opts.Attempts = 1
	}
	if opts.Delay == 0 {
		opts.Delay = 300 * time.Millisecond
	}
	return &Analyzer{
		gen:    gen,
		opts:   opts,
		logger: slog.Default(),
	}
}

func (a *Analyzer) Enabled() bool {
	return a.gen != nil
}

// Annotate returns the model's annotation of the note. Answers without
// usable JSON still produce an annotation; an error means the model could
// not be reached at all.
func (a *Analyzer) Annotate(ctx context.Context, req NoteRequest) (types.Annotation, error) {
	if a.gen == nil {
		a.logger.Warn("AI model not available, returning basic analysis", "subject", req.Subject, "class", req.Class)
		return Unavailable(), nil
	}

	prompt := a.buildPrompt(req)
	if a.logger.Enabled(ctx, slog.LevelDebug) {
		if n, err := CountTokens(prompt); err == nil {
			a.logger.Debug("prompt prepared", "tokens", n, "chars", len(prompt))
		}
	}

	start := time.Now()
	raw, err := a.generate(ctx, prompt, req.File)
	if err != nil {
		return types.Annotation{}, err
	}
	a.logger.Info("AI response received", "model", a.gen.Name(), "chars", len(raw), "took", time.Since(start))

	ann, ok := parseAnnotation(raw)
	if ok {
		return ann, nil
	}

	// One more round asking the model to fix its own output.
	fixed, err := a.generate(ctx, buildRepairPrompt(raw), nil)
	if err != nil {
		a.logger.Warn("repair request failed", "error", err)
		return ann, nil
	}
	if repaired, ok := parseAnnotation(fixed); ok {
		return repaired, nil
	}
	return ann, nil
}

func (a *Analyzer) generate(ctx context.Context, prompt string, att *model.Attachment) (string, error) {
	return retry.DoWithData(
		func() (string, error) {
			out, err := a.gen.Generate(ctx, prompt, att)
			if err != nil && !retryable(err) {
				return "", retry.Unrecoverable(err)
			}
			return out, err
		},
		retry.Context(ctx),
		retry.Attempts(a.opts.Attempts),
		retry.Delay(a.opts.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("AI request failed, retrying", "attempt", n+1, "error", err)
		}),
	)
}

func (a *Analyzer) buildPrompt(req NoteRequest) string {
	what, source := "note", "note"
	if req.File != nil {
		what, source = "uploaded file", "document"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s for a %s class (%s) and provide:", what, req.Subject, req.Class)
	if req.IndexKey != "" && req.IndexKey != index.General {
		fmt.Fprintf(&b, " This note appears to be related to textbook section: %s.", req.IndexKey)
	}
	fmt.Fprintf(&b, `
1. Subject classification (confirm if it matches %s)
2. Key topics/concepts covered
3. Important equations or formulas (if any)
4. FIVE most important points or facts with specific explanations
5. Potential test questions
6. Related concepts or links to explore
7. Textbook index/chapter relevance

For the important points, provide the exact text from the %s and a detailed explanation.
`, req.Subject, source)

	if req.File == nil {
		fmt.Fprintf(&b, "\nNote content:\n%s\n", FitTokens(req.Content, a.opts.TokenLimit))
	}

	b.WriteString(`
Respond in JSON format with the following structure:
{
    "subject_match": true/false,
    "key_topics": ["topic1", "topic2"],
    "important_equations": ["equation1", "equation2"],
    "highlights": ["text to highlight", "another highlight"],
    "important_points": [
        {
            "text": "exact text from document",
            "explanation": "detailed explanation of why this is important",
            "type": "concept/formula/definition/example"
        }
    ],
    "test_questions": ["question1", "question2"],
    "related_links": ["concept1", "concept2"],
    "index_relevance": "description of how this relates to textbook structure"
}
`)
	return b.String()
}

func buildRepairPrompt(badOutput string) string {
	return fmt.Sprintf(`
You previously returned an invalid JSON.

Your task is to FIX the JSON.

RULES:
- Output ONLY valid JSON
- Do NOT add or remove information
- Do NOT add explanations
- Do NOT include markdown
- Do NOT include text outside JSON

INVALID OUTPUT:
<<<
%s
>>>

Return the corrected JSON only.
`, badOutput)
}
