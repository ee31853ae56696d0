// Package conversation classifies inbound messages, routes them to an AI
// backend, and drives the per-session qualification loop.
package conversation

import (
	"strings"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// Keyword tables for type detection. Matching is case-insensitive substring
// containment; greeting matching is prefix-only.
var (
	greetingPrefixes = []string{"hi", "hello", "hey", "good morning", "good afternoon"}
	emotionalWords   = []string{"struggling", "frustrated", "difficult", "tough", "hard"}
	technicalWords   = []string{"how does", "what is", "explain", "technical", "api", "integration"}
	closingWords     = []string{"ready", "let's do", "sign up", "get started"}
	analyticalCues   = []string{"price", "cost", "lead"}
)

// DetectType classifies a message given the prior turn history. Rules run in
// fixed priority order; the first match wins, so "I'm struggling, what is a
// pixel?" is emotional, not technical.
func DetectType(message string, history []model.ConversationTurn, closingThreshold int) model.ConversationType {
	lower := strings.ToLower(strings.TrimSpace(message))

	if len(history) == 0 || hasGreetingPrefix(lower) {
		return model.TypeGreeting
	}
	if containsAny(lower, emotionalWords) {
		return model.TypeEmotional
	}
	if containsAny(lower, technicalWords) {
		return model.TypeTechnical
	}
	if containsAny(lower, closingWords) || len(history) > closingThreshold {
		return model.TypeClosing
	}
	return model.TypeQualification
}

func hasGreetingPrefix(lower string) bool {
	for _, prefix := range greetingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// SelectBackend picks the backend for a classified message. Inside the
// rapport window the empathetic backend always answers; beyond it the type
// decides, with qualification messages about money routed analytically and
// unrecognized types alternating on history parity.
func SelectBackend(ctype model.ConversationType, message string, historyLen, rapportWindow int) model.Backend {
	if historyLen < rapportWindow {
		return model.BackendEmpathetic
	}

	switch ctype {
	case model.TypeGreeting, model.TypeEmotional, model.TypeClosing:
		return model.BackendEmpathetic
	case model.TypeTechnical:
		return model.BackendAnalytical
	case model.TypeQualification:
		if containsAny(strings.ToLower(message), analyticalCues) {
			return model.BackendAnalytical
		}
		return model.BackendEmpathetic
	default:
		if historyLen%2 == 0 {
			return model.BackendAnalytical
		}
		return model.BackendEmpathetic
	}
}
