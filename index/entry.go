// Package index turns textbook index text into an ordered list of entries and
// files free-text notes under the best matching entry.
package index

import "strings"

// General is the index key used when a note cannot be matched to any entry.
const General = "general"

type Kind string

const (
	KindChapter    Kind = "chapter"
	KindSection    Kind = "section"
	KindSubsection Kind = "subsection"
	KindTopic      Kind = "topic"
)

// Level returns the nesting depth for the kind. Unclassified topics are 0.
func (k Kind) Level() int {
	switch k {
	case KindChapter:
		return 1
	case KindSection:
		return 2
	case KindSubsection:
		return 3
	default:
		return 0
	}
}

// Entry is one parsed line of a textbook index.
type Entry struct {
	Kind   Kind   `json:"type"`
	Number string `json:"number,omitempty"`
	Title  string `json:"title"`
	Level  int    `json:"level"`
}

func newEntry(kind Kind, number, title string) Entry {
	return Entry{
		Kind:   kind,
		Number: number,
		Title:  strings.TrimSpace(title),
		Level:  kind.Level(),
	}
}

// Key identifies the entry when notes are filed under it: the number when
// present, otherwise the lower-cased title with spaces turned into underscores.
func (e Entry) Key() string {
	if e.Number != "" {
		return e.Number
	}
	if e.Title != "" {
		return strings.ReplaceAll(strings.ToLower(e.Title), " ", "_")
	}
	return General
}

// Structure is the parsed index of one textbook, in input line order.
type Structure []Entry

// Lookup returns the first entry whose key equals key.
func (s Structure) Lookup(key string) (Entry, bool) {
	for _, e := range s {
		if e.Key() == key {
			return e, true
		}
	}
	return Entry{}, false
}
