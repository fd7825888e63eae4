package model

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"studyrag/logger"
	"studyrag/types"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BackendFactory builds the embedding backend handle. It runs at most once
// successfully per Provider.
type BackendFactory func() (Embedder, error)

// Provider owns the embedding backend. A Provider without a factory is valid
// and reports Configured() == false.
type Provider struct {
	log      *logger.Logger
	dim      int
	timeout  time.Duration
	factory  BackendFactory
	truncate func(string) string

	mu      sync.Mutex
	backend atomic.Pointer[Embedder]
}

func NewProvider(factory BackendFactory, dim int, timeout time.Duration, log *logger.Logger) *Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Provider{
		log:      log,
		dim:      dim,
		timeout:  timeout,
		factory:  factory,
		truncate: TruncateTokens,
	}
}

func (p *Provider) Configured() bool {
	return p != nil && p.factory != nil
}

func (p *Provider) Dim() int {
	return p.dim
}

func (p *Provider) handle() (Embedder, error) {
	if e := p.backend.Load(); e != nil {
		return *e, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e := p.backend.Load(); e != nil {
		return *e, nil
	}
	e, err := p.factory()
	if err != nil {
		return nil, err
	}
	p.backend.Store(&e)
	p.log.Info("embedding backend initialized", "dim", p.dim)
	return e, nil
}

// Embed truncates text to a safe length and calls the backend with a timeout
// and one retry. Errors are returned to the caller.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if !p.Configured() {
		return nil, types.ErrUnavailable
	}
	backend, err := p.handle()
	if err != nil {
		return nil, fmt.Errorf("%w: embedding backend: %v", types.ErrProvider, err)
	}

	input := p.truncate(text)
	vec, err := Retry(ctx, p.timeout, func(ctx context.Context) ([]float32, error) {
		return backend.Embed(ctx, input)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %v", types.ErrProvider, err)
	}
	if p.dim > 0 && len(vec) != p.dim {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, want %d", types.ErrProvider, len(vec), p.dim)
	}
	return vec, nil
}

// EmbedOrZero is the ingestion policy: failures are logged and replaced by a
// zero vector of the configured dimension.
func (p *Provider) EmbedOrZero(ctx context.Context, text string) []float32 {
	vec, err := p.Embed(ctx, text)
	if err != nil {
		p.log.Warn("embedding failed, using zero vector", "error", err)
		return make([]float32, p.dim)
	}
	return vec
}
