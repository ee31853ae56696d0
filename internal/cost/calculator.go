// Package cost computes per-call USD cost for backend token usage.
package cost

import (
	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
)

// Calculator computes costs for AI backend usage from configured rates.
type Calculator struct {
	rates config.PricingConfig
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates config.PricingConfig) *Calculator {
	return &Calculator{rates: rates}
}

// Completion computes the cost of a single chat completion. Unknown models
// cost zero rather than failing the request.
func (c *Calculator) Completion(backend model.Backend, modelID string, inputTokens, outputTokens int) float64 {
	var table map[string]config.ModelPricing
	switch backend {
	case model.BackendEmpathetic:
		table = c.rates.OpenAI
	case model.BackendAnalytical:
		table = c.rates.Anthropic
	default:
		return 0
	}

	rate, ok := table[modelID]
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}
