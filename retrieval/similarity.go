package retrieval

import (
	"math"
	"slices"

	"studyrag/types"
)

// DefaultTopK is the number of chunks placed into a chat context.
const DefaultTopK = 3

// Cosine returns dot(a,b)/(|a|*|b|). It is 0 when either norm is zero and -2
// when the vectors cannot be compared (empty or of different length).
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return unrankable
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// below any real cosine value
const unrankable = -2

type Scored struct {
	Chunk types.Chunk
	Score float64
}

func (s Scored) Rankable() bool {
	return s.Score > unrankable
}

// Rank sorts chunks by descending similarity to query. Ties keep the input
// order and unrankable chunks go last.
func Rank(query []float32, chunks []types.Chunk) []Scored {
	scored := make([]Scored, len(chunks))
	for i, c := range chunks {
		scored[i] = Scored{Chunk: c, Score: Cosine(query, c.Embedding)}
	}
	slices.SortStableFunc(scored, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return scored
}

// TopK returns at most k of the best ranked chunks, skipping unrankable ones.
func TopK(query []float32, chunks []types.Chunk, k int) []Scored {
	ranked := Rank(query, chunks)
	out := make([]Scored, 0, k)
	for _, s := range ranked {
		if len(out) == k || !s.Rankable() {
			break
		}
		out = append(out, s)
	}
	return out
}
