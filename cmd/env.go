package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/analyze"
	"github.com/sells-group/leadflow-cli/internal/conversation"
	"github.com/sells-group/leadflow-cli/internal/cost"
	"github.com/sells-group/leadflow-cli/internal/crm"
	"github.com/sells-group/leadflow-cli/internal/extract"
	"github.com/sells-group/leadflow-cli/internal/qualify"
	"github.com/sells-group/leadflow-cli/internal/store"
	"github.com/sells-group/leadflow-cli/internal/verify"
	"github.com/sells-group/leadflow-cli/pkg/adlibrary"
	anthropicpkg "github.com/sells-group/leadflow-cli/pkg/anthropic"
	"github.com/sells-group/leadflow-cli/pkg/notion"
	"github.com/sells-group/leadflow-cli/pkg/openai"
	sfpkg "github.com/sells-group/leadflow-cli/pkg/salesforce"
	"github.com/sells-group/leadflow-cli/pkg/sitefetch"
)

// appEnv holds the initialized store, engine and collaborators shared by the
// serve/chat/sessions commands.
type appEnv struct {
	Store    store.Store
	Engine   *conversation.Engine
	Gate     *qualify.Gate
	Verifier *verify.Verifier
	Analyzer *analyze.Analyzer
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore picks the session store from config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return store.NewMemory(), nil
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "leadflow.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initTemplates loads the question/call-offer pack, falling back to the
// built-in defaults when no override path is configured.
func initTemplates() (*qualify.TemplatePack, error) {
	if cfg.Templates.Path == "" {
		return qualify.DefaultTemplates(), nil
	}
	return qualify.LoadTemplates(cfg.Templates.Path)
}

// initSalesforce authenticates via JWT. Returns nil when Salesforce is not
// configured; CRM sync then covers Notion only.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// initEnv sets up the store, both AI backends, the qualification gate,
// verifier, analyzer and CRM sync, and wires them into the conversation
// engine. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	templates, err := initTemplates()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	gate := qualify.NewGate(cfg.Qualify, templates)

	empathetic := conversation.NewOpenAIBackend(
		openai.NewClient(cfg.OpenAI.Key,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.Model),
		),
		cfg.OpenAI,
	)
	analytical := conversation.NewAnthropicBackend(
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic,
	)
	router := conversation.NewRouter(empathetic, analytical, cfg.Router)

	sfClient, err := initSalesforce()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var notionClient notion.Client
	if cfg.Notion.Token != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
	}

	opts := []conversation.EngineOption{}
	if sfClient != nil || notionClient != nil {
		opts = append(opts, conversation.WithSyncer(crm.NewSync(sfClient, notionClient, cfg.Notion)))
	} else {
		zap.L().Warn("salesforce and notion not configured, CRM sync disabled")
	}

	engine := conversation.NewEngine(
		st, router, extract.NewRegexExtractor(), gate,
		cost.NewCalculator(cfg.Pricing),
		cfg.Scoring, cfg.Router,
		opts...,
	)

	var fetcher sitefetch.Client
	if cfg.SiteFetch.Key != "" {
		fetcher = sitefetch.NewClient(cfg.SiteFetch.Key, sitefetch.WithBaseURL(cfg.SiteFetch.BaseURL))
	}
	var adsClient adlibrary.Client
	if cfg.AdLibrary.BaseURL != "" {
		adsClient = adlibrary.NewClient(cfg.AdLibrary.BaseURL)
	}

	return &appEnv{
		Store:    st,
		Engine:   engine,
		Gate:     gate,
		Verifier: verify.NewVerifier(cfg.Verify),
		Analyzer: analyze.New(fetcher, adsClient),
	}, nil
}
