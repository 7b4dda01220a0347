package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/domain"
)

// OpenAIEmbedder is a real embedding provider using the OpenAI-compatible
// API. When configured it replaces the local strategies entirely.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dims   int
	logger *zap.Logger
}

// OpenAIConfig holds the provider settings.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// NewOpenAI creates an OpenAI-compatible embedding provider.
func NewOpenAI(cfg *OpenAIConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		dims:   dims,
		logger: cfg.Logger,
	}
}

// Embed implements domain.Embedder via the embeddings API. All failures are
// wrapped with domain.ErrEmbeddingProviderError for 502 mapping upstream.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, e.dims), nil
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.dims,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.logger.Warn("Embedding request failed", zap.String("model", string(e.model)), zap.Error(err))
		return nil, fmt.Errorf("create embeddings: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	return resp.Data[0].Embedding, nil
}

// Dimensions returns the configured vector width.
func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *OpenAIEmbedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
