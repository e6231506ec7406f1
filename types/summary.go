package types

import (
	"time"
	"unicode/utf8"
)

const (
	summaryHighlights = 10
	summaryQuestions  = 10
	summaryStarred    = 5
	starredExcerpt    = 200
)

// Summary condenses every note filed under one index key into a study sheet.
type Summary struct {
	Type           string    `json:"type"`
	Highlights     []string  `json:"highlights"`
	Questions      []string  `json:"questions"`
	StarredContent []string  `json:"starred_content"`
	TotalNotes     int       `json:"total_notes"`
	LastUpdated    time.Time `json:"last_updated"`
}

// NewSummary returns nil when there are no notes.
func NewSummary(notes []Note, now time.Time) *Summary {
	if len(notes) == 0 {
		return nil
	}

	var highlights, questions, starred []string
	for _, n := range notes {
		if n.Annotation != nil {
			highlights = append(highlights, n.Annotation.Highlights...)
			questions = append(questions, n.Annotation.TestQuestions...)
		}
		if n.Stars > 0 {
			starred = append(starred, excerpt(n.Content, starredExcerpt))
		}
	}

	return &Summary{
		Type:           "summary",
		Highlights:     head(highlights, summaryHighlights),
		Questions:      head(questions, summaryQuestions),
		StarredContent: head(starred, summaryStarred),
		TotalNotes:     len(notes),
		LastUpdated:    now,
	}
}

func head(s []string, n int) []string {
	if s == nil {
		return []string{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
