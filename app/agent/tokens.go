package agent

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.EncodingForModel("gpt-3.5-turbo")
	})
	return enc, encErr
}

func CountTokens(s string) (int, error) {
	e, err := encoding()
	if err != nil {
		return 0, err
	}
	return len(e.Encode(s, nil, nil)), nil
}

// FitTokens cuts s down to at most limit tokens. Every token covers at least
// one byte, so text no longer than limit bytes is returned as is. Without an
// encoder the cut falls back to limit runes.
func FitTokens(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	e, err := encoding()
	if err != nil {
		return truncate(s, limit)
	}
	tokens := e.Encode(s, nil, nil)
	if len(tokens) <= limit {
		return s
	}
	return e.Decode(tokens[:limit])
}
