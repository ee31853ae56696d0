package conversation

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/leaderr"
	"github.com/sells-group/leadflow-cli/internal/model"
)

// Reply is a backend's answer plus its token accounting.
type Reply struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Invoker is the narrow view of an AI backend the router needs.
type Invoker interface {
	Invoke(ctx context.Context, turns []model.ConversationTurn) (*Reply, error)
}

// RoutedReply reports which backend actually produced the answer. Callers
// never learn which backend was merely intended.
type RoutedReply struct {
	Reply
	Used model.Backend `json:"used"`
}

// Router selects a backend per message and falls back to the analytical
// backend exactly once when the selected one fails.
type Router struct {
	backends map[model.Backend]Invoker
	cfg      config.RouterConfig
}

// NewRouter creates a Router over the two backend invokers.
func NewRouter(empathetic, analytical Invoker, cfg config.RouterConfig) *Router {
	return &Router{
		backends: map[model.Backend]Invoker{
			model.BackendEmpathetic: empathetic,
			model.BackendAnalytical: analytical,
		},
		cfg: cfg,
	}
}

// Dispatch classifies nothing itself; it takes the already-detected type,
// selects a backend, and invokes it with the one-shot analytical fallback.
func (r *Router) Dispatch(ctx context.Context, ctype model.ConversationType, message string, history []model.ConversationTurn) (*RoutedReply, error) {
	selected := SelectBackend(ctype, message, len(history), r.cfg.RapportWindow)

	turns := append(append([]model.ConversationTurn{}, history...), model.ConversationTurn{
		Role: model.RoleUser,
		Text: message,
	})

	reply, err := r.backends[selected].Invoke(ctx, turns)
	if err == nil {
		return &RoutedReply{Reply: *reply, Used: selected}, nil
	}

	if selected == model.BackendAnalytical {
		return nil, leaderr.NewProviderError(string(selected), err)
	}

	zap.L().Warn("router: backend failed, falling back",
		zap.String("selected", string(selected)),
		zap.String("type", string(ctype)),
		zap.Error(err),
	)

	reply, fbErr := r.backends[model.BackendAnalytical].Invoke(ctx, turns)
	if fbErr != nil {
		return nil, leaderr.NewProviderError(string(model.BackendAnalytical), fbErr)
	}
	return &RoutedReply{Reply: *reply, Used: model.BackendAnalytical}, nil
}
