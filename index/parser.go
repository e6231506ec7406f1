package index

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minTopicLen is the longest unclassified line that is still dropped.
const minTopicLen = 3

// Patterns are tried in this order. Subsection has to come before section,
// otherwise "1.2.3 Title" parses as section "1.2" with title "3 Title".
var (
	chapterRe    = regexp.MustCompile(`(?i)^chapter\s+(\d+)[:.]?\s*(.+)$`)
	subsectionRe = regexp.MustCompile(`^(\d+\.\d+\.\d+)[:.]?\s*(.+)$`)
	sectionRe    = regexp.MustCompile(`^(\d+\.\d+)[:.]?\s*(.+)$`)
)

var numbered = []struct {
	re   *regexp.Regexp
	kind Kind
}{
	{chapterRe, KindChapter},
	{subsectionRe, KindSubsection},
	{sectionRe, KindSection},
}

// Parse classifies every non-blank line of raw as a chapter, section,
// subsection or free topic. It never fails: text without usable lines yields
// an empty structure.
func Parse(raw string) Structure {
	structure := Structure{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if e, ok := parseLine(line); ok {
			structure = append(structure, e)
		}
	}
	return structure
}

func parseLine(line string) (Entry, bool) {
	for _, p := range numbered {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return newEntry(p.kind, m[1], m[2]), true
		}
	}
	if utf8.RuneCountInString(line) > minTopicLen {
		return newEntry(KindTopic, "", line), true
	}
	return Entry{}, false
}
