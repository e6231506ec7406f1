package index

import "strings"

// Match picks the entry of s whose title words occur most often in content
// and returns its key. Words are checked by substring containment, so short
// title words can match inside longer content words. Ties keep the earlier
// entry; a missing structure or an all-zero score yields General.
func Match(content string, s Structure) string {
	if len(s) == 0 {
		return General
	}

	content = strings.ToLower(content)

	var (
		best      *Entry
		bestScore int
	)
	for i := range s {
		if score := score(content, s[i].Title); score > bestScore {
			best = &s[i]
			bestScore = score
		}
	}
	if best == nil {
		return General
	}
	return best.Key()
}

// score counts the words of title found in the already lower-cased content.
func score(content, title string) int {
	n := 0
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if strings.Contains(content, word) {
			n++
		}
	}
	return n
}
