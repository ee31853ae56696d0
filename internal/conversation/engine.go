package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/cost"
	"github.com/sells-group/leadflow-cli/internal/extract"
	"github.com/sells-group/leadflow-cli/internal/leaderr"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/qualify"
	"github.com/sells-group/leadflow-cli/internal/scoring"
	"github.com/sells-group/leadflow-cli/internal/store"
)

// degradedReply is returned when both backends fail. The visitor never sees
// a raw error.
const degradedReply = "Sorry, I'm having a little trouble on my end right now. " +
	"Give me a moment and ask again, or leave your email and we'll follow up."

// Syncer pushes qualified leads to downstream CRM systems.
type Syncer interface {
	SyncLead(ctx context.Context, session *model.Session) error
}

// ReplyEnvelope is the full per-turn response: the assistant text plus the
// decision state derived from the updated profile.
type ReplyEnvelope struct {
	SessionID    string                 `json:"session_id"`
	Text         string                 `json:"text"`
	Type         model.ConversationType `json:"type"`
	Backend      model.Backend          `json:"backend,omitempty"`
	Degraded     bool                   `json:"degraded,omitempty"`
	LeadScore    int                    `json:"lead_score"`
	Temperature  model.Temperature      `json:"temperature"`
	ReadyToBuy   bool                   `json:"ready_to_buy"`
	Qualified    bool                   `json:"qualified"`
	Completeness float64                `json:"completeness"`
	NextQuestion string                 `json:"next_question,omitempty"`
	CallOffer    string                 `json:"call_offer,omitempty"`
	Cost         float64                `json:"cost"`
}

// Engine drives a full conversation turn: extract facts, rescore, classify,
// route, persist.
type Engine struct {
	store      store.Store
	router     *Router
	extractor  extract.FactExtractor
	gate       *qualify.Gate
	calc       *cost.Calculator
	syncer     Syncer
	scoringCfg config.ScoringConfig
	routerCfg  config.RouterConfig
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSyncer attaches a CRM syncer, invoked once per session when the gate
// first qualifies the lead.
func WithSyncer(s Syncer) EngineOption {
	return func(e *Engine) { e.syncer = s }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the conversation engine.
func NewEngine(st store.Store, router *Router, extractor extract.FactExtractor, gate *qualify.Gate, calc *cost.Calculator, scoringCfg config.ScoringConfig, routerCfg config.RouterConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		store:      st,
		router:     router,
		extractor:  extractor,
		gate:       gate,
		calc:       calc,
		scoringCfg: scoringCfg,
		routerCfg:  routerCfg,
		now:        time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewSessionID mints an opaque session id.
func NewSessionID() string {
	return uuid.NewString()
}

// HandleMessage runs one conversation turn. The session is created on first
// contact; profile mutations from the extracted patch are applied before
// scoring so the reply always reflects the message it answers.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, message string) (*ReplyEnvelope, error) {
	if sessionID == "" {
		return nil, leaderr.NewInputError("session_id", "must not be blank")
	}
	if message == "" {
		return nil, leaderr.NewInputError("message", "must not be blank")
	}

	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if session == nil {
		session = &model.Session{
			ID:        sessionID,
			CreatedAt: now,
		}
	}

	history := session.Turns
	ctype := DetectType(message, history, e.routerCfg.ClosingTurnThreshold)

	if patch := e.extractor.Extract(message); patch != nil && !patch.IsZero() {
		patch.Apply(&session.Profile)
		patch.ApplyQualification(&session.Qualification)
	}
	session.Profile.ConversationCount++
	scoring.Recompute(&session.Profile, e.scoringCfg.ReadyScoreThreshold)

	routed, routeErr := e.router.Dispatch(ctx, ctype, message, history)

	env := &ReplyEnvelope{
		SessionID:   session.ID,
		Type:        ctype,
		LeadScore:   session.Profile.LeadScore,
		Temperature: session.Profile.Temperature,
		ReadyToBuy:  session.Profile.ReadyToBuy,
	}

	if routeErr != nil {
		if !leaderr.IsProvider(routeErr) {
			return nil, routeErr
		}
		zap.L().Error("conversation: all backends failed, degrading",
			zap.String("session_id", session.ID),
			zap.Error(routeErr),
		)
		env.Text = degradedReply
		env.Degraded = true
	} else {
		env.Text = routed.Text
		env.Backend = routed.Used
		env.Cost = e.calc.Completion(routed.Used, routed.Model, routed.InputTokens, routed.OutputTokens)
		session.AICost += env.Cost
	}

	session.Turns = append(session.Turns,
		model.ConversationTurn{Timestamp: now, Role: model.RoleUser, Text: message, Type: ctype},
		model.ConversationTurn{Timestamp: now, Role: model.RoleAssistant, Text: env.Text},
	)
	session.UpdatedAt = now

	result := e.gate.Evaluate(&session.Qualification)
	env.Qualified = result.Qualified
	env.Completeness = result.Completeness
	if result.Qualified {
		env.CallOffer = e.gate.CallOfferMessage(&session.Qualification)
		e.maybeSync(ctx, session)
	} else {
		env.NextQuestion = e.gate.NextQuestion(&session.Qualification)
	}

	if err := e.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return env, nil
}

// UpdateFacts applies an out-of-band profile patch (page views, analysis
// results) and rescores.
func (e *Engine) UpdateFacts(ctx context.Context, sessionID string, patch *model.ProfilePatch) (*model.Session, error) {
	if sessionID == "" {
		return nil, leaderr.NewInputError("session_id", "must not be blank")
	}
	if patch == nil || patch.IsZero() {
		return nil, leaderr.NewInputError("patch", "must not be empty")
	}

	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, leaderr.NewInputError("session_id", "unknown session")
	}

	patch.Apply(&session.Profile)
	patch.ApplyQualification(&session.Qualification)
	scoring.Recompute(&session.Profile, e.scoringCfg.ReadyScoreThreshold)
	session.UpdatedAt = e.now()

	if err := e.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// maybeSync launches the at-most-once CRM push for a newly qualified lead.
// The conversation reply never waits on it.
func (e *Engine) maybeSync(ctx context.Context, session *model.Session) {
	if e.syncer == nil || session.CRMSynced {
		return
	}
	session.CRMSynced = true

	snapshot := *session
	go func() {
		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := e.syncer.SyncLead(syncCtx, &snapshot); err != nil {
			zap.L().Warn("conversation: crm sync failed",
				zap.String("session_id", snapshot.ID),
				zap.Error(err),
			)
		}
	}()
}
