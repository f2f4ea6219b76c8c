package llm

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/contentpulse/backend/internal/metrics"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		model            string
		promptTokens     int
		completionTokens int
		want             float64
	}{
		{"gpt-4o-mini", 1_000_000, 1_000_000, 0.75},
		{"gpt-4o", 100_000, 50_000, 0.75},
		{"gpt-4o-mini", 0, 0, 0},
		{"some-unknown-model", 1_000_000, 1_000_000, 0},
	}
	for _, tt := range tests {
		c := &Client{model: tt.model}
		if got := c.estimateCost(tt.promptTokens, tt.completionTokens); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("estimateCost(%s, %d, %d) = %v, want %v",
				tt.model, tt.promptTokens, tt.completionTokens, got, tt.want)
		}
	}
}

func TestRecordUsage(t *testing.T) {
	result := &GenerationResult{
		PromptTokens:     1200,
		CompletionTokens: 300,
		TotalTokens:      1500,
		CostUSD:          0.00036,
	}

	recordUsage("gpt-4o-mini", result)

	if got := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("gpt-4o-mini", "prompt")); got != 1200 {
		t.Errorf("prompt token counter = %v, want 1200", got)
	}
	if got := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("gpt-4o-mini", "completion")); got != 300 {
		t.Errorf("completion token counter = %v, want 300", got)
	}
	if got := testutil.ToFloat64(metrics.LLMCost.WithLabelValues("gpt-4o-mini")); math.Abs(got-0.00036) > 1e-9 {
		t.Errorf("cost counter = %v, want 0.00036", got)
	}
}
