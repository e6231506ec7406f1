package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Entry
	}{
		{
			name: "chapter with colon",
			line: "Chapter 1: Introduction",
			want: Entry{Kind: KindChapter, Number: "1", Title: "Introduction", Level: 1},
		},
		{
			name: "chapter is case insensitive and keeps title case",
			line: "CHAPTER 12. Thermal Physics",
			want: Entry{Kind: KindChapter, Number: "12", Title: "Thermal Physics", Level: 1},
		},
		{
			name: "section",
			line: "1.2 Vectors",
			want: Entry{Kind: KindSection, Number: "1.2", Title: "Vectors", Level: 2},
		},
		{
			name: "section with trailing punctuation",
			line: "3.4: Work and Energy",
			want: Entry{Kind: KindSection, Number: "3.4", Title: "Work and Energy", Level: 2},
		},
		{
			name: "subsection is not cut down to a section",
			line: "1.2.3 Dot Product",
			want: Entry{Kind: KindSubsection, Number: "1.2.3", Title: "Dot Product", Level: 3},
		},
		{
			name: "topic keeps the full line",
			line: "Appendix A - Units",
			want: Entry{Kind: KindTopic, Title: "Appendix A - Units", Level: 0},
		},
		{
			name: "four characters is a topic",
			line: "abcd",
			want: Entry{Kind: KindTopic, Title: "abcd", Level: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestParseDropsShortAndBlankLines(t *testing.T) {
	assert.Empty(t, Parse("abc"))
	assert.Empty(t, Parse("   \n\t\n"))
	assert.Empty(t, Parse(""))
	assert.NotNil(t, Parse(""), "empty structure should still marshal as []")
}

func TestParsePreservesLineOrder(t *testing.T) {
	raw := strings.Join([]string{
		"Chapter 2: Motion",
		"2.2 Acceleration",
		"2.1 Velocity",
		"",
		"xy",
		"2.1.1 Average velocity\r",
		"Chapter 1: Units",
		"2.2 Acceleration",
	}, "\n")

	got := Parse(raw)

	keys := make([]string, len(got))
	for i, e := range got {
		keys[i] = e.Key()
	}
	assert.Equal(t, []string{"2", "2.2", "2.1", "2.1.1", "1", "2.2"}, keys)
	assert.Equal(t, "Average velocity", got[3].Title)
}

func TestParseLevelFollowsKind(t *testing.T) {
	raw := "Chapter 1 Basics\n1.1 Sets\n1.1.1 Subsets\nGlossary of terms"
	for _, e := range Parse(raw) {
		assert.Equal(t, e.Kind.Level(), e.Level, e.Title)
	}
}

func TestParseBoundedByNonBlankLines(t *testing.T) {
	inputs := []string{
		"",
		"a\nbb\nccc",
		"Chapter 1: A\n\n\n1.1 B\nsomething long enough",
		"\r\n\r\n1.1.1\r\n",
		"ünï\nünïc",
	}
	for _, raw := range inputs {
		nonBlank := 0
		for _, l := range strings.Split(raw, "\n") {
			if strings.TrimSpace(l) != "" {
				nonBlank++
			}
		}
		got := Parse(raw)
		assert.LessOrEqual(t, len(got), nonBlank, raw)
		assert.Equal(t, got, Parse(raw), "parse should be deterministic")
	}
}

func TestParseCountsRunesNotBytes(t *testing.T) {
	assert.Empty(t, Parse("ünï"))
	assert.Len(t, Parse("ünïc"), 1)
}

func TestEntryKey(t *testing.T) {
	assert.Equal(t, "1.2", Entry{Number: "1.2", Title: "Vectors"}.Key())
	assert.Equal(t, "newton's_laws_of_motion", Entry{Title: "Newton's Laws of Motion"}.Key())
	assert.Equal(t, General, Entry{}.Key())
}

func TestStructureLookup(t *testing.T) {
	s := Parse("1.1 Kinematics\nFurther Reading")

	e, ok := s.Lookup("further_reading")
	require.True(t, ok)
	assert.Equal(t, KindTopic, e.Kind)

	_, ok = s.Lookup("9.9")
	assert.False(t, ok)
}
