package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
)

func testRates() config.PricingConfig {
	return config.PricingConfig{
		OpenAI: map[string]config.ModelPricing{
			"gpt-4o": {Input: 2.50, Output: 10.00},
		},
		Anthropic: map[string]config.ModelPricing{
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		},
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name    string
		backend model.Backend
		model   string
		input   int
		output  int
		want    float64
	}{
		{
			name:    "empathetic gpt-4o",
			backend: model.BackendEmpathetic,
			model:   "gpt-4o",
			input:   1000, output: 500,
			want: 0.0025 + 0.005,
		},
		{
			name:    "analytical sonnet",
			backend: model.BackendAnalytical,
			model:   "claude-sonnet-4-5-20250929",
			input:   2000, output: 1000,
			want: 0.006 + 0.015,
		},
		{
			name:    "analytical haiku",
			backend: model.BackendAnalytical,
			model:   "claude-haiku-4-5-20251001",
			input:   1_000_000, output: 1_000_000,
			want: 0.80 + 4.00,
		},
		{
			name:    "unknown model",
			backend: model.BackendAnalytical,
			model:   "claude-next",
			input:   1000, output: 1000,
			want: 0,
		},
		{
			name:    "unknown backend",
			backend: model.Backend("other"),
			model:   "gpt-4o",
			input:   1000, output: 1000,
			want: 0,
		},
		{
			name:    "zero tokens",
			backend: model.BackendEmpathetic,
			model:   "gpt-4o",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Completion(tt.backend, tt.model, tt.input, tt.output)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
