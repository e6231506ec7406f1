package types

import (
	"time"

	"github.com/google/uuid"

	"studynotes/index"
)

type Subject struct {
	Name        string            `json:"name"`
	Classes     map[string]*Class `json:"classes"`
	CreatedDate time.Time         `json:"created_date"`
}

type Class struct {
	Name        string    `json:"name"`
	NoteCount   int       `json:"note_count"`
	CreatedDate time.Time `json:"created_date"`
}

// IndexRecord is the uploaded textbook index of one class. A new upload
// replaces the previous record as a whole.
type IndexRecord struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	OriginalName string          `json:"original_name"`
	Content      string          `json:"content"`
	Structure    index.Structure `json:"structure"`
	UploadDate   time.Time       `json:"upload_date"`
}

type Note struct {
	ID           int         `json:"id"`
	Subject      string      `json:"subject"`
	Class        string      `json:"class_name"`
	IndexKey     string      `json:"index_key"`
	Filename     string      `json:"filename"`
	OriginalName string      `json:"original_name"`
	MIMEType     string      `json:"mime_type,omitempty"`
	Pages        int         `json:"pages,omitempty"`
	Content      string      `json:"content"`
	UploadDate   time.Time   `json:"upload_date"`
	Annotation   *Annotation `json:"ai_analysis,omitempty"`
	Highlights   []string    `json:"highlights"`
	Questions    []string    `json:"questions"`
	Stars        int         `json:"stars"`
}

type ImportantPoint struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
	Type        string `json:"type"`
}

// Annotation is what the AI analysis returns for a note. The error fields
// are only set when the analysis could not be completed.
type Annotation struct {
	SubjectMatch       bool             `json:"subject_match"`
	KeyTopics          []string         `json:"key_topics"`
	ImportantEquations []string         `json:"important_equations"`
	Highlights         []string         `json:"highlights"`
	ImportantPoints    []ImportantPoint `json:"important_points"`
	TestQuestions      []string         `json:"test_questions"`
	RelatedLinks       []string         `json:"related_links"`
	IndexRelevance     string           `json:"index_relevance"`

	RawResponse string `json:"raw_response,omitempty"`
	JSONError   string `json:"json_error,omitempty"`
	Error       string `json:"error,omitempty"`
	RawError    string `json:"raw_error,omitempty"`
}

// NoteTree groups notes by subject, class and index key.
type NoteTree map[string]map[string]map[string][]Note

func (t NoteTree) Add(n Note) {
	classes, ok := t[n.Subject]
	if !ok {
		classes = make(map[string]map[string][]Note)
		t[n.Subject] = classes
	}
	keys, ok := classes[n.Class]
	if !ok {
		keys = make(map[string][]Note)
		classes[n.Class] = keys
	}
	keys[n.IndexKey] = append(keys[n.IndexKey], n)
}

// Class returns the notes of one class keyed by index key, never nil.
func (t NoteTree) Class(subject, class string) map[string][]Note {
	if keys := t[subject][class]; keys != nil {
		return keys
	}
	return map[string][]Note{}
}

// SubjectCounts returns the number of notes per subject.
func (t NoteTree) SubjectCounts() map[string]int {
	counts := make(map[string]int, len(t))
	for subject, classes := range t {
		total := 0
		for _, keys := range classes {
			for _, notes := range keys {
				total += len(notes)
			}
		}
		counts[subject] = total
	}
	return counts
}

// ClassCounts returns the number of notes per class of subject.
func (t NoteTree) ClassCounts(subject string) map[string]int {
	counts := make(map[string]int)
	for class, keys := range t[subject] {
		total := 0
		for _, notes := range keys {
			total += len(notes)
		}
		counts[class] = total
	}
	return counts
}

// KeyCounts returns the number of notes per index key of one class.
func (t NoteTree) KeyCounts(subject, class string) map[string]int {
	counts := make(map[string]int)
	for key, notes := range t[subject][class] {
		counts[key] = len(notes)
	}
	return counts
}
