package conversation

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/resilience"
	"github.com/sells-group/leadflow-cli/pkg/anthropic"
	"github.com/sells-group/leadflow-cli/pkg/openai"
)

// System prompts steer each backend toward its half of the conversation.
const (
	empatheticSystemPrompt = "You are a warm, attentive marketing consultant for an ad agency. " +
		"Build rapport, acknowledge the visitor's frustrations, and keep answers short and human. " +
		"Gently steer toward understanding their business and advertising challenges."

	analyticalSystemPrompt = "You are a precise marketing analyst for an ad agency. " +
		"Answer technical and pricing questions directly with concrete numbers and steps. " +
		"Keep answers short and steer toward understanding the visitor's ad spend and results."
)

// OpenAIBackend adapts the OpenAI-compatible chat client to the router's
// Invoker interface, with rate limiting and transient-error retry.
type OpenAIBackend struct {
	client  openai.Client
	cfg     config.OpenAIConfig
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewOpenAIBackend wraps client as the empathetic backend.
func NewOpenAIBackend(client openai.Client, cfg config.OpenAIConfig) *OpenAIBackend {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &OpenAIBackend{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (b *OpenAIBackend) Invoke(ctx context.Context, turns []model.ConversationTurn) (*Reply, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "conversation: rate limit wait")
	}

	messages := make([]openai.Message, 0, len(turns)+1)
	messages = append(messages, openai.Message{Role: "system", Content: empatheticSystemPrompt})
	for _, t := range turns {
		messages = append(messages, openai.Message{Role: string(t.Role), Content: t.Text})
	}

	req := openai.ChatCompletionRequest{
		Model:       b.cfg.Model,
		Messages:    messages,
		Temperature: &b.cfg.Temperature,
	}
	if b.cfg.MaxTokens > 0 {
		req.MaxTokens = &b.cfg.MaxTokens
	}

	resp, err := resilience.DoVal(ctx, b.retry, func(ctx context.Context) (*openai.ChatCompletionResponse, error) {
		return b.client.ChatCompletion(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// AnthropicBackend adapts the Anthropic client to the router's Invoker
// interface, with rate limiting and transient-error retry.
type AnthropicBackend struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	system  []anthropic.SystemBlock
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewAnthropicBackend wraps client as the analytical backend.
func NewAnthropicBackend(client anthropic.Client, cfg config.AnthropicConfig) *AnthropicBackend {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &AnthropicBackend{
		client:  client,
		cfg:     cfg,
		system:  anthropic.BuildCachedSystemBlocks(analyticalSystemPrompt),
		limiter: rate.NewLimiter(limit, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
}

func (b *AnthropicBackend) Invoke(ctx context.Context, turns []model.ConversationTurn) (*Reply, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "conversation: rate limit wait")
	}

	messages := make([]anthropic.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, anthropic.Message{Role: string(t.Role), Content: t.Text})
	}

	maxTokens := int64(b.cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 500
	}
	req := anthropic.MessageRequest{
		Model:       b.cfg.Model,
		MaxTokens:   maxTokens,
		System:      b.system,
		Messages:    messages,
		Temperature: &b.cfg.Temperature,
	}

	resp, err := resilience.DoVal(ctx, b.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return b.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogUsage(resp.Model, "chat")

	return &Reply{
		Text:         resp.Text(),
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}, nil
}
