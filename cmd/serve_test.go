package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadflow-cli/internal/analyze"
	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/conversation"
	"github.com/sells-group/leadflow-cli/internal/cost"
	"github.com/sells-group/leadflow-cli/internal/extract"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/qualify"
	"github.com/sells-group/leadflow-cli/internal/store"
	"github.com/sells-group/leadflow-cli/internal/verify"
)

type stubInvoker struct {
	text string
}

func (s *stubInvoker) Invoke(_ context.Context, _ []model.ConversationTurn) (*conversation.Reply, error) {
	return &conversation.Reply{Text: s.text, Model: "stub", InputTokens: 10, OutputTokens: 10}, nil
}

func testEnv(t *testing.T) *appEnv {
	t.Helper()

	routerCfg := config.RouterConfig{RapportWindow: 3, ClosingTurnThreshold: 10}
	gate := qualify.NewGate(config.QualifyConfig{MinMonthlySpend: 200, HighCPAThreshold: 100}, qualify.DefaultTemplates())
	router := conversation.NewRouter(&stubInvoker{text: "hello!"}, &stubInvoker{text: "here are the numbers"}, routerCfg)
	st := store.NewMemory()

	engine := conversation.NewEngine(
		st, router, extract.NewRegexExtractor(), gate,
		cost.NewCalculator(config.PricingConfig{}),
		config.ScoringConfig{ReadyScoreThreshold: 70}, routerCfg,
	)

	return &appEnv{
		Store:    st,
		Engine:   engine,
		Gate:     gate,
		Verifier: verify.NewVerifier(config.VerifyConfig{NameSimilarityCutoff: 0.8, CompetitorSignalCutoff: 0.5}),
		Analyzer: analyze.New(nil, nil),
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServe_Health(t *testing.T) {
	h := newHandler(testEnv(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServe_ChatCreatesSession(t *testing.T) {
	env := testEnv(t)
	h := newHandler(env)

	w := postJSON(t, h, "/chat", map[string]string{"message": "hi, I run a dental clinic"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply conversation.ReplyEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.SessionID)
	assert.Equal(t, "hello!", reply.Text)
	assert.NotEmpty(t, reply.NextQuestion)

	session, err := env.Store.GetSession(context.Background(), reply.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Len(t, session.Turns, 2)
}

func TestServe_ChatRejectsBlankMessage(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServe_SessionLifecycle(t *testing.T) {
	env := testEnv(t)
	h := newHandler(env)

	w := postJSON(t, h, "/chat", map[string]string{"message": "hello there"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply conversation.ReplyEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))

	// List.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	// Get.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+reply.SessionID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/"+reply.SessionID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+reply.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_UpdateFacts(t *testing.T) {
	env := testEnv(t)
	h := newHandler(env)

	w := postJSON(t, h, "/chat", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply conversation.ReplyEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))

	w = postJSON(t, h, "/sessions/"+reply.SessionID+"/facts", map[string]any{
		"email":            "maria@garcia-dental.com",
		"current_ad_spend": 3000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var session model.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "maria@garcia-dental.com", session.Profile.Email)
	assert.Equal(t, 3000.0, session.Profile.CurrentAdSpend)
	assert.Positive(t, session.Profile.LeadScore)
}

func TestServe_UpdateFactsUnknownSession(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/sessions/nope/facts", map[string]any{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServe_Qualify(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/qualify", map[string]any{
		"is_owner":         true,
		"monthly_ad_spend": 1500,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Qualified    bool    `json:"qualified"`
		Completeness float64 `json:"completeness"`
		CallOffer    string  `json:"call_offer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Qualified)
	assert.NotEmpty(t, resp.CallOffer)
}

func TestServe_QualifyIncomplete(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/qualify", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Complete     bool     `json:"complete"`
		Missing      []string `json:"missing"`
		NextQuestion string   `json:"next_question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Complete)
	assert.Equal(t, []string{"is_owner", "monthly_ad_spend"}, resp.Missing)
	assert.NotEmpty(t, resp.NextQuestion)
}

func TestServe_QualifyDisclosedButFailing(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/qualify", map[string]any{
		"is_owner":         true,
		"monthly_ad_spend": 50,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Qualified    bool     `json:"qualified"`
		Reason       string   `json:"reason"`
		Missing      []string `json:"missing"`
		NextQuestion string   `json:"next_question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Qualified)
	assert.Equal(t, "insufficient/undisclosed budget", resp.Reason)
	assert.Empty(t, resp.Missing)
	assert.NotEmpty(t, resp.NextQuestion)
}

func TestServe_Verify(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/verify", map[string]any{
		"name":  "Maria Garcia",
		"email": "maria@garcia-dental.com",
		"record": map[string]any{
			"name":        "Garcia Family Dental",
			"domain":      "garcia-dental.com",
			"owner_names": []string{"Maria Garcia"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result model.Verification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, model.VisitorOwner, result.Type)
}

func TestServe_VerifyRequiresRecord(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/verify", map[string]any{"name": "Maria"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServe_AnalyzeRequiresInput(t *testing.T) {
	h := newHandler(testEnv(t))

	w := postJSON(t, h, "/analyze", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
