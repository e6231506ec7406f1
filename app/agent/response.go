package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"studynotes/types"
)

const rawResponseLimit = 500

var errNoJSON = errors.New("no valid json found")

// extractJSON cuts the outermost {...} out of a model answer.
func extractJSON(s string) (string, error) {
	s = stripCodeFences(strings.TrimSpace(s))
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start == -1 || end == -1 || end <= start {
		return s, errNoJSON
	}

	return s[start : end+1], nil
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// parseAnnotation decodes a model answer. When the answer holds no usable
// JSON it still returns a placeholder annotation, with ok set to false.
func parseAnnotation(raw string) (types.Annotation, bool) {
	raw = strings.TrimSpace(raw)

	js, err := extractJSON(raw)
	if err != nil {
		ann := emptyAnnotation("Analysis completed")
		ann.RawResponse = truncate(raw, rawResponseLimit)
		ann.IndexRelevance = "AI analysis completed"
		return ann, false
	}

	var ann types.Annotation
	if err := json.Unmarshal([]byte(js), &ann); err != nil {
		ann = emptyAnnotation("AI Analysis")
		ann.RawResponse = truncate(raw, rawResponseLimit)
		ann.JSONError = err.Error()
		ann.IndexRelevance = "AI analysis completed with parsing issues"
		return ann, false
	}
	normalize(&ann)
	return ann, true
}

func emptyAnnotation(topic string) types.Annotation {
	return types.Annotation{
		SubjectMatch:       true,
		KeyTopics:          []string{topic},
		ImportantEquations: []string{},
		Highlights:         []string{},
		ImportantPoints:    []types.ImportantPoint{},
		TestQuestions:      []string{},
		RelatedLinks:       []string{},
	}
}

func normalize(ann *types.Annotation) {
	for _, s := range []*[]string{
		&ann.KeyTopics,
		&ann.ImportantEquations,
		&ann.Highlights,
		&ann.TestQuestions,
		&ann.RelatedLinks,
	} {
		if *s == nil {
			*s = []string{}
		}
	}
	if ann.ImportantPoints == nil {
		ann.ImportantPoints = []types.ImportantPoint{}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
