package model

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"studyrag/config"
	"studyrag/logger"
)

// OpenAIEmbedder creates embeddings through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
	model    string
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &OpenAIEmbedder{embedder: embedder, model: model}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("openai %s: %w", e.model, err)
	}
	return vec, nil
}

// FactoryFor returns the backend factory for cfg, or nil when no backend is configured.
func FactoryFor(cfg config.EmbeddingConfig) BackendFactory {
	if !cfg.Enabled() {
		return nil
	}
	switch cfg.Backend {
	case "ollama":
		return func() (Embedder, error) { return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel) }
	default:
		return func() (Embedder, error) { return NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model) }
	}
}

// NewProviderFromConfig builds the process-wide embedding provider.
func NewProviderFromConfig(cfg config.Config, log *logger.Logger) *Provider {
	ec := cfg.Embedding
	factory := FactoryFor(ec)
	if factory == nil {
		log.Info("embeddings disabled, chat falls back to plain text context", "backend", ec.Backend)
	} else {
		log.Info("embeddings enabled", "backend", ec.Backend, "dim", ec.Dim)
	}
	return NewProvider(factory, ec.Dim, cfg.ExternalTimeout, log)
}
