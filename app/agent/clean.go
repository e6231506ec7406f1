package agent

import (
	"html"
	"regexp"
	"strings"

	"studynotes/types"
)

var (
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	keptTagRe  = regexp.MustCompile(`^</?su[bp]>$`)
	supDigitRe = regexp.MustCompile(`(\w)\^(\d+)`)
	supAlphaRe = regexp.MustCompile(`(\w)\^([a-zA-Z])`)
	subDigitRe = regexp.MustCompile(`(\w)_(\d+)`)
	subAlphaRe = regexp.MustCompile(`(\w)_([a-zA-Z])`)
	spaceRe    = regexp.MustCompile(`[\s\p{Z}]+`)
)

// CleanText strips markup a model put into its answer and renders ^ and _
// notation as <sup>/<sub>. Those two tags survive a second pass, so cleaning
// stored text again leaves it unchanged.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllStringFunc(s, func(tag string) string {
		if keptTagRe.MatchString(tag) {
			return tag
		}
		return ""
	})

	s = supDigitRe.ReplaceAllString(s, "${1}<sup>${2}</sup>")
	s = supAlphaRe.ReplaceAllString(s, "${1}<sup>${2}</sup>")
	s = subDigitRe.ReplaceAllString(s, "${1}<sub>${2}</sub>")
	s = subAlphaRe.ReplaceAllString(s, "${1}<sub>${2}</sub>")

	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Clean applies CleanText to every text field of the annotation.
func Clean(ann *types.Annotation) {
	if ann == nil {
		return
	}
	for i := range ann.ImportantPoints {
		p := &ann.ImportantPoints[i]
		p.Text = CleanText(p.Text)
		p.Explanation = CleanText(p.Explanation)
	}
	for _, list := range [][]string{
		ann.KeyTopics,
		ann.ImportantEquations,
		ann.Highlights,
		ann.TestQuestions,
		ann.RelatedLinks,
	} {
		for i := range list {
			list[i] = CleanText(list[i])
		}
	}
	ann.IndexRelevance = CleanText(ann.IndexRelevance)
}
