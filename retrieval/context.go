package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"studyrag/logger"
	"studyrag/types"
)

const (
	Preamble = "You are a helpful AI teaching assistant. You help students understand their study materials, answer questions clearly, and provide educational explanations."

	naiveContextChars = 2000
	snippetChars      = 200
)

// Mode is the kind of document context placed into a system prompt.
type Mode int

const (
	ModeNone Mode = iota + 1
	ModeRanked
	ModeNaive
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRanked:
		return "ranked"
	case ModeNaive:
		return "naive"
	}
	return "unknown"
}

// QueryEmbedder embeds chat questions.
type QueryEmbedder interface {
	Configured() bool
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Builder struct {
	log      *logger.Logger
	embedder QueryEmbedder
	topK     int
}

func NewBuilder(log *logger.Logger, embedder QueryEmbedder, topK int) *Builder {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Builder{log: log, embedder: embedder, topK: topK}
}

// Build returns the system prompt for the next chat turn. doc may be nil.
func (b *Builder) Build(ctx context.Context, history []types.ChatMessage, doc *types.Document) (string, Mode) {
	if doc == nil {
		return Preamble, ModeNone
	}
	query := latestUserMessage(history)
	if strings.TrimSpace(query) == "" {
		return Preamble, ModeNone
	}

	if b.rankingAvailable(doc) {
		ranked, err := b.ranked(ctx, query, doc)
		if err == nil {
			return Preamble + ranked, ModeRanked
		}
		b.log.Warn("ranked context failed, using document text", "doc", doc.ID, "error", err)
	}
	return Preamble + naive(doc), ModeNaive
}

func (b *Builder) rankingAvailable(doc *types.Document) bool {
	if b.embedder == nil || !b.embedder.Configured() {
		return false
	}
	return lo.SomeBy(doc.Chunks, func(c types.Chunk) bool { return c.HasEmbedding() })
}

func (b *Builder) ranked(ctx context.Context, query string, doc *types.Document) (string, error) {
	qv, err := b.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}
	top := TopK(qv, doc.Chunks, b.topK)
	if len(top) == 0 {
		return "", fmt.Errorf("no comparable chunks in %s", doc.ID)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n\nContext from %s:\n\nRelevant information from the PDF:\n\n", doc.Name)
	for _, s := range top {
		fmt.Fprintf(&sb, "[Source: Page %d]\n\"%s...\"\n\n", s.Chunk.PageNumber, types.FirstRunes(s.Chunk.Content, snippetChars))
	}
	sb.WriteString("\n\nIMPORTANT: Cite page numbers when answering. Format: \"According to page X: [quote]\"")
	return sb.String(), nil
}

func naive(doc *types.Document) string {
	return fmt.Sprintf("\n\nContext from %s:\n%s\n\nUse this context when relevant.", doc.Name, types.FirstRunes(doc.TextContent, naiveContextChars))
}

func latestUserMessage(history []types.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == types.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
