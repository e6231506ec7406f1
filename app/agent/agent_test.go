package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studynotes/model"
)

type fakeGenerator struct {
	answers []string
	errs    []error
	prompts []string
	files   []*model.Attachment
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string, att *model.Attachment) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.files = append(f.files, att)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.answers) {
		return f.answers[i], nil
	}
	return "", errors.New("no more answers")
}

func newTestAnalyzer(gen model.Generator) *Analyzer {
	return NewAnalyzer(gen, Options{Attempts: 3, Delay: time.Millisecond, TokenLimit: 2000})
}

const goodAnswer = "```json\n" + `{
  "subject_match": true,
  "key_topics": ["Newton's laws"],
  "important_equations": ["F = ma"],
  "highlights": ["force"],
  "important_points": [{"text": "F = ma", "explanation": "second law", "type": "formula"}],
  "test_questions": ["State the second law"],
  "index_relevance": "Section 1.1"
}` + "\n```"

func TestAnnotateParsesAnswer(t *testing.T) {
	gen := &fakeGenerator{answers: []string{goodAnswer}}

	ann, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{
		Subject:  "Physics",
		Class:    "PHY101",
		IndexKey: "1.1",
		Content:  "Force equals mass times acceleration",
	})
	require.NoError(t, err)

	assert.True(t, ann.SubjectMatch)
	assert.Equal(t, []string{"Newton's laws"}, ann.KeyTopics)
	assert.Equal(t, []string{"F = ma"}, ann.ImportantEquations)
	require.Len(t, ann.ImportantPoints, 1)
	assert.Equal(t, "formula", ann.ImportantPoints[0].Type)
	assert.Equal(t, []string{}, ann.RelatedLinks)
	assert.Empty(t, ann.Error)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "Analyze this note for a Physics class (PHY101)")
	assert.Contains(t, p, "textbook section: 1.1.")
	assert.Contains(t, p, "Note content:\nForce equals mass times acceleration")
	assert.Nil(t, gen.files[0])
}

func TestAnnotateFilePrompt(t *testing.T) {
	gen := &fakeGenerator{answers: []string{goodAnswer}}
	file := &model.Attachment{Name: "notes.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.4")}

	_, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{
		Subject:  "Physics",
		Class:    "PHY101",
		IndexKey: "general",
		File:     file,
	})
	require.NoError(t, err)

	p := gen.prompts[0]
	assert.Contains(t, p, "Analyze this uploaded file")
	assert.NotContains(t, p, "textbook section")
	assert.NotContains(t, p, "Note content")
	assert.Same(t, file, gen.files[0])
}

func TestAnnotateRetriesTransientErrors(t *testing.T) {
	gen := &fakeGenerator{
		errs:    []error{errors.New("503 unavailable"), errors.New("503 unavailable")},
		answers: []string{"", "", goodAnswer},
	}

	ann, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{Subject: "Physics", Class: "PHY101"})
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 3)
	assert.Equal(t, []string{"Newton's laws"}, ann.KeyTopics)
}

func TestAnnotateDoesNotRetryCredentials(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("invalid API key provided")}}

	_, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{Subject: "Physics", Class: "PHY101"})
	require.Error(t, err)
	assert.Len(t, gen.prompts, 1)
	assert.Equal(t, "API credentials issue - please check your API key", Failed(err, false).Error)
}

func TestAnnotateRepairsBadJSON(t *testing.T) {
	gen := &fakeGenerator{answers: []string{
		`{"key_topics": ["vectors",]}`,
		`{"key_topics": ["vectors"]}`,
	}}

	ann, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{Subject: "Math", Class: "LA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vectors"}, ann.KeyTopics)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "You previously returned an invalid JSON.")
}

func TestAnnotateKeepsPlaceholderWhenRepairFails(t *testing.T) {
	gen := &fakeGenerator{answers: []string{"I cannot help with that.", "still no json"}}

	ann, err := newTestAnalyzer(gen).Annotate(context.Background(), NoteRequest{Subject: "Math", Class: "LA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Analysis completed"}, ann.KeyTopics)
	assert.Equal(t, "I cannot help with that.", ann.RawResponse)
	assert.Equal(t, "AI analysis completed", ann.IndexRelevance)
}

func TestAnnotateWithoutModel(t *testing.T) {
	a := NewAnalyzer(nil, Options{})
	assert.False(t, a.Enabled())

	ann, err := a.Annotate(context.Background(), NoteRequest{Subject: "Physics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI analysis unavailable"}, ann.KeyTopics)
	assert.Equal(t, "AI model not configured - please check API key", ann.Error)
}

func TestParseAnnotation(t *testing.T) {
	ann, ok := parseAnnotation(`Sure! {"key_topics": ["a"], "subject_match": false} Hope this helps`)
	assert.True(t, ok)
	assert.False(t, ann.SubjectMatch)
	assert.Equal(t, []string{"a"}, ann.KeyTopics)

	ann, ok = parseAnnotation(`{"key_topics": [1, 2]}`)
	assert.False(t, ok)
	assert.Equal(t, []string{"AI Analysis"}, ann.KeyTopics)
	assert.NotEmpty(t, ann.JSONError)
	assert.Equal(t, "AI analysis completed with parsing issues", ann.IndexRelevance)

	ann, ok = parseAnnotation(strings.Repeat("z", 800))
	assert.False(t, ok)
	assert.Len(t, ann.RawResponse, 500)
}

func TestFailed(t *testing.T) {
	tests := []struct {
		err        string
		fileUpload bool
		want       string
	}{
		{"rpc error: missing credentials", false, "API credentials issue - please check your API key"},
		{"model gemini-x not found", false, "Model not found - API model name issue"},
		{"googleapi: Error 429: Quota exceeded", false, "API quota exceeded - please try again later"},
		{"file upload failed: too large", true, "File upload issue - please check file format and size"},
		{"file upload failed: too large", false, "file upload failed: too large"},
		{"connection refused", false, "connection refused"},
	}
	for _, tt := range tests {
		ann := Failed(errors.New(tt.err), tt.fileUpload)
		assert.Equal(t, tt.want, ann.Error, tt.err)
		assert.Equal(t, tt.err, ann.RawError)
		assert.Equal(t, []string{"Analysis failed"}, ann.KeyTopics)
	}
	assert.Equal(t, "AI file analysis failed", Failed(errors.New("x"), true).IndexRelevance)
}

func TestFitTokensShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short note", FitTokens("short note", 2000))
	assert.Equal(t, "anything", FitTokens("anything", 0))
}
