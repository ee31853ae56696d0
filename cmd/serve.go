package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadflow-cli/internal/conversation"
	"github.com/sells-group/leadflow-cli/internal/leaderr"
	"github.com/sells-group/leadflow-cli/internal/model"
	"github.com/sells-group/leadflow-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat and qualification HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newHandler(env),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newHandler builds the HTTP API.
func newHandler(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chat", handleChat(env))
	r.Get("/sessions", handleListSessions(env))
	r.Get("/sessions/{id}", handleGetSession(env))
	r.Delete("/sessions/{id}", handleDeleteSession(env))
	r.Post("/sessions/{id}/facts", handleUpdateFacts(env))
	r.Post("/qualify", handleQualify(env))
	r.Post("/verify", handleVerify(env))
	r.Post("/analyze", handleAnalyze(env))

	return r
}

func handleChat(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
			Message   string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, leaderr.NewInputError("body", "invalid request body"))
			return
		}
		if req.SessionID == "" {
			req.SessionID = conversation.NewSessionID()
		}

		reply, err := env.Engine.HandleMessage(r.Context(), req.SessionID, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func handleListSessions(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.SessionFilter{
			Temperature: model.Temperature(r.URL.Query().Get("temperature")),
		}
		sessions, err := env.Store.ListSessions(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions": sessions,
			"count":    len(sessions),
		})
	}
}

func handleGetSession(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		session, err := env.Store.GetSession(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if session == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func handleDeleteSession(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := env.Store.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateFacts(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.ProfilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, leaderr.NewInputError("body", "invalid request body"))
			return
		}

		session, err := env.Engine.UpdateFacts(r.Context(), chi.URLParam(r, "id"), &patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func handleQualify(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data model.QualificationData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, leaderr.NewInputError("body", "invalid request body"))
			return
		}

		if missing := env.Gate.MissingData(&data); len(missing) > 0 {
			writeError(w, leaderr.NewDataIncomplete(missing, env.Gate.NextQuestion(&data)))
			return
		}

		result := env.Gate.Evaluate(&data)
		resp := map[string]any{
			"qualified":    result.Qualified,
			"reason":       result.Reason,
			"completeness": result.Completeness,
		}
		if result.Qualified {
			resp["call_offer"] = env.Gate.CallOfferMessage(&data)
		} else {
			resp["next_question"] = env.Gate.NextQuestion(&data)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleVerify(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string                `json:"name"`
			Email  string                `json:"email"`
			Record *model.BusinessRecord `json:"record"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, leaderr.NewInputError("body", "invalid request body"))
			return
		}
		if req.Record == nil {
			writeError(w, leaderr.NewInputError("record", "business record is required"))
			return
		}

		writeJSON(w, http.StatusOK, env.Verifier.Verify(req.Name, req.Email, req.Record))
	}
}

func handleAnalyze(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID  string `json:"session_id"`
			URL        string `json:"url"`
			Advertiser string `json:"advertiser"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, leaderr.NewInputError("body", "invalid request body"))
			return
		}

		result, err := env.Analyzer.Analyze(r.Context(), req.URL, req.Advertiser)
		if err != nil {
			writeError(w, err)
			return
		}

		// Fold the learned facts into the session when one is named.
		if req.SessionID != "" && !result.Patch.IsZero() {
			if _, err := env.Engine.UpdateFacts(r.Context(), req.SessionID, &result.Patch); err != nil {
				writeError(w, err)
				return
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. DataIncomplete is a
// normal negative decision and stays a 200 with the guidance payload.
func writeError(w http.ResponseWriter, err error) {
	var incomplete *leaderr.DataIncomplete
	if errors.As(err, &incomplete) {
		writeJSON(w, http.StatusOK, map[string]any{
			"complete":      false,
			"missing":       incomplete.Missing,
			"next_question": incomplete.NextQuestion,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case leaderr.IsInput(err):
		status = http.StatusBadRequest
	case leaderr.IsProvider(err):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
