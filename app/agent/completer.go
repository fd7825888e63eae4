package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"studyrag/config"
	"studyrag/logger"
	"studyrag/model"
	"studyrag/types"
)

// Prompt is one chat-completion request.
type Prompt struct {
	System      string
	Messages    []types.ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
}

type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// LLMCompleter sends prompts to a langchaingo model with a per-attempt
// timeout and one retry.
type LLMCompleter struct {
	log     *logger.Logger
	llm     llms.Model
	timeout time.Duration
}

func NewLLMCompleter(log *logger.Logger, llm llms.Model, timeout time.Duration) *LLMCompleter {
	return &LLMCompleter{log: log, llm: llm, timeout: timeout}
}

// NewOpenAICompatible connects to any OpenAI-compatible chat endpoint (Groq by default).
func NewOpenAICompatible(cfg config.LLMConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm, nil
}

func toMessageContent(p Prompt) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(p.Messages)+1)
	if p.System != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, p.System))
	}
	for _, m := range p.Messages {
		msgType := llms.ChatMessageTypeHuman
		if m.Role == types.RoleAssistant {
			msgType = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(msgType, m.Content))
	}
	return out
}

func (c *LLMCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	msgs := toMessageContent(p)
	c.log.Debug("sending prompt to LLM", "model", p.Model, "messages", len(msgs), "tokens", CountPromptTokens(p))

	opts := []llms.CallOption{llms.WithTemperature(p.Temperature)}
	if p.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.MaxTokens))
	}
	if p.Model != "" {
		opts = append(opts, llms.WithModel(p.Model))
	}

	resp, err := model.Retry(ctx, c.timeout, func(ctx context.Context) (*llms.ContentResponse, error) {
		return c.llm.GenerateContent(ctx, msgs, opts...)
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", types.ErrProvider, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("%w: empty completion", types.ErrProvider)
	}
	c.log.Debug("LLM answered", "model", p.Model, "took", time.Since(start))
	return resp.Choices[0].Content, nil
}

// CountPromptTokens estimates the prompt size in cl100k tokens.
func CountPromptTokens(p Prompt) int {
	var sb strings.Builder
	sb.WriteString(p.System)
	for _, m := range p.Messages {
		sb.WriteByte('\n')
		sb.WriteString(m.Content)
	}
	return model.CountTokens(sb.String())
}
