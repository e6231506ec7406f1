package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studynotes/types"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"E = mc^2", "E = mc<sup>2</sup>"},
		{"x^n + y^2", "x<sup>n</sup> + y<sup>2</sup>"},
		{"v_0 + a_t", "v<sub>0</sub> + a<sub>t</sub>"},
		{"<b>Bold</b> &amp; <i>plain</i>", "Bold & plain"},
		{"  many \n\n  spaces\t here ", "many spaces here"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "alert(1)"},
		{"already x<sup>2</sup> clean", "already x<sup>2</sup> clean"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), tt.in)
	}
}

func TestCleanTextIsIdempotent(t *testing.T) {
	for _, s := range []string{"E = mc^2", "H_2O <em>water</em>", "a^b_c"} {
		once := CleanText(s)
		assert.Equal(t, once, CleanText(once), s)
	}
}

func TestClean(t *testing.T) {
	ann := &types.Annotation{
		KeyTopics:          []string{"<p>Energy</p>"},
		ImportantEquations: []string{"KE = 1/2 mv^2"},
		ImportantPoints:    []types.ImportantPoint{{Text: "  p_1 ", Explanation: "<br/>momentum"}},
		IndexRelevance:     "Section&nbsp;2",
	}
	Clean(ann)

	assert.Equal(t, []string{"Energy"}, ann.KeyTopics)
	assert.Equal(t, []string{"KE = 1/2 mv<sup>2</sup>"}, ann.ImportantEquations)
	assert.Equal(t, "p<sub>1</sub>", ann.ImportantPoints[0].Text)
	assert.Equal(t, "momentum", ann.ImportantPoints[0].Explanation)
	assert.Equal(t, "Section 2", ann.IndexRelevance)

	Clean(nil)
}
