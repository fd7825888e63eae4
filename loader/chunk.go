package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidWindow = errors.New("chunk overlap must be smaller than the window size")

// Window is one chunk of words: Text covers words [StartIndex, EndIndex).
type Window struct {
	Text       string
	StartIndex int
	EndIndex   int
}

// Chunk splits text into windows of windowSize whitespace-delimited words,
// advancing windowSize-overlap words per step. The last window may be shorter.
func Chunk(text string, windowSize, overlap int) ([]Window, error) {
	if windowSize <= 0 || overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidWindow, windowSize, overlap)
	}

	words := strings.Fields(text)
	step := windowSize - overlap

	var windows []Window
	for i := 0; i < len(words); i += step {
		end := i + windowSize
		if end > len(words) {
			end = len(words)
		}

		content := strings.Join(words[i:end], " ")
		if strings.TrimSpace(content) != "" {
			windows = append(windows, Window{
				Text:       content,
				StartIndex: i,
				EndIndex:   end,
			})
		}

		if end == len(words) {
			break
		}
	}
	return windows, nil
}

// PageStarts converts per-page texts into the word offset where each page begins.
func PageStarts(pages []string) []int {
	starts := make([]int, len(pages))
	offset := 0
	for i, p := range pages {
		starts[i] = offset
		offset += len(strings.Fields(p))
	}
	return starts
}

// PageForWord returns the 1-based page containing word index idx.
func PageForWord(starts []int, idx int) int {
	if len(starts) == 0 {
		return 1
	}
	// first page whose start is beyond idx, minus one
	p := sort.Search(len(starts), func(i int) bool { return starts[i] > idx })
	if p == 0 {
		return 1
	}
	return p
}
