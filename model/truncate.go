package model

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"studyrag/types"
)

const (
	MaxEmbeddingTokens = 8000
	// used when the BPE ranks cannot be loaded
	maxEmbeddingChars = 6000
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			enc = e
		}
	})
	return enc
}

// TruncateTokens cuts text to MaxEmbeddingTokens tokens.
func TruncateTokens(text string) string {
	e := encoding()
	if e == nil {
		return types.FirstRunes(text, maxEmbeddingChars)
	}
	tokens := e.Encode(text, nil, nil)
	if len(tokens) <= MaxEmbeddingTokens {
		return text
	}
	return e.Decode(tokens[:MaxEmbeddingTokens])
}

// CountTokens returns the number of cl100k tokens in text, or -1 when the
// encoding is unavailable.
func CountTokens(text string) int {
	e := encoding()
	if e == nil {
		return -1
	}
	return len(e.Encode(text, nil, nil))
}
