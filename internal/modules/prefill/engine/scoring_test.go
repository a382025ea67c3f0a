package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/precept/internal/modules/prefill/domain"
)

func TestScoreAlgosReferenceWeights(t *testing.T) {
	ctx := domain.Context{
		SizeVsADV:            0.17647,
		UrgencyLevel:         "Low",
		EffectiveTimeToClose: 120,
		VolatilityBucket:     "Low",
		LiquidityBucket:      "High",
		LiquidityScore:       1029.6,
		Intents:              domain.NotesIntents{BenchmarkType: "VWAP"},
	}

	sel := ScoreAlgos(ctx, domain.RuleResult{}, nil, DefaultConfig())

	// size_medium 2 + urgency_low 1 + volatility_low 2 + benchmark_vwap 5
	assert.Equal(t, 10.0, sel.Scores[domain.AlgoVWAP])
	// liquidity_deep 1
	assert.Equal(t, 1.0, sel.Scores[domain.AlgoPOV])
	assert.Equal(t, 0.0, sel.Scores[domain.AlgoICEBERG])
	assert.Equal(t, domain.AlgoVWAP, sel.Algo)
	assert.Equal(t, domain.SelectedByScore, sel.Source)
}

func TestScoreAlgosRuleOverrideWins(t *testing.T) {
	ctx := domain.Context{
		SizeVsADV:            0.02,
		UrgencyLevel:         "High",
		EffectiveTimeToClose: 10,
		VolatilityBucket:     "Medium",
		LiquidityBucket:      "Medium",
		LiquidityScore:       1.0,
	}
	rule := domain.RuleResult{Algo: domain.AlgoVWAP}

	sel := ScoreAlgos(ctx, rule, nil, DefaultConfig())

	assert.Equal(t, domain.AlgoVWAP, sel.Algo)
	assert.Equal(t, domain.SelectedByRule, sel.Source)
	// Scores are still reported for transparency.
	assert.Greater(t, sel.Scores[domain.AlgoPOV], sel.Scores[domain.AlgoVWAP])
}

func TestScoreAlgosPatternTieBreak(t *testing.T) {
	// VWAP 2 (size_medium) vs POV 1.5 (urgency_medium): inside the margin.
	ctx := domain.Context{
		SizeVsADV:            0.1538,
		UrgencyLevel:         "Medium",
		EffectiveTimeToClose: 45,
		VolatilityBucket:     "Medium",
		LiquidityBucket:      "Medium",
		LiquidityScore:       41.4,
	}
	cfg := DefaultConfig()

	t.Run("usable pattern inside margin wins", func(t *testing.T) {
		pattern := &domain.PatternResult{Algo: domain.AlgoPOV, Aggression: "High", SupportCount: 3}
		sel := ScoreAlgos(ctx, domain.RuleResult{}, pattern, cfg)
		assert.Equal(t, domain.AlgoPOV, sel.Algo)
		assert.Equal(t, domain.SelectedByPattern, sel.Source)
	})

	t.Run("pattern outside margin loses", func(t *testing.T) {
		pattern := &domain.PatternResult{Algo: domain.AlgoICEBERG, SupportCount: 5}
		sel := ScoreAlgos(ctx, domain.RuleResult{}, pattern, cfg)
		assert.Equal(t, domain.AlgoVWAP, sel.Algo)
		assert.Equal(t, domain.SelectedByScore, sel.Source)
	})

	t.Run("thin support is ignored", func(t *testing.T) {
		pattern := &domain.PatternResult{Algo: domain.AlgoPOV, SupportCount: 2}
		sel := ScoreAlgos(ctx, domain.RuleResult{}, pattern, cfg)
		assert.Equal(t, domain.AlgoVWAP, sel.Algo)
		assert.Equal(t, domain.SelectedByScore, sel.Source)
	})
}

func TestScoreAlgosEqualScoresUsePriorityOrder(t *testing.T) {
	// size_small gives POV 1, urgency_low gives VWAP 1: a dead tie.
	ctx := domain.Context{
		SizeVsADV:            0.01,
		UrgencyLevel:         "Low",
		EffectiveTimeToClose: 120,
		VolatilityBucket:     "Medium",
		LiquidityBucket:      "Medium",
		LiquidityScore:       1.0,
	}

	sel := ScoreAlgos(ctx, domain.RuleResult{}, nil, DefaultConfig())

	assert.Equal(t, sel.Scores[domain.AlgoVWAP], sel.Scores[domain.AlgoPOV])
	assert.Equal(t, domain.AlgoVWAP, sel.Algo)
}

func TestSelectionReasons(t *testing.T) {
	t.Run("size statement always present", func(t *testing.T) {
		sel := domain.Selection{Algo: domain.AlgoPOV, Source: domain.SelectedByScore}
		reasons := selectionReasons(domain.Context{SizeVsADV: 0.004}, sel)
		assert.Contains(t, reasons, "Order size is 0% of ADV")
	})

	t.Run("vwap statements", func(t *testing.T) {
		ctx := domain.Context{SizeVsADV: 0.17647, VolatilityBucket: "Low"}
		sel := domain.Selection{Algo: domain.AlgoVWAP, Source: domain.SelectedByRule}
		reasons := selectionReasons(ctx, sel)
		assert.Equal(t, []string{
			"Order size is 18% of ADV",
			"Low volatility favors VWAP strategy",
			"Large order size favors VWAP execution",
			"Algo: VWAP (rule override)",
		}, reasons)
	})

	t.Run("pov urgency statements", func(t *testing.T) {
		ctx := domain.Context{SizeVsADV: 0.05, UrgencyLevel: "High"}
		sel := domain.Selection{Algo: domain.AlgoPOV, Source: domain.SelectedByScore}
		assert.Contains(t, selectionReasons(ctx, sel), "High urgency favors POV (participation) strategy")

		ctx.UrgencyLevel = "Medium"
		assert.Contains(t, selectionReasons(ctx, sel), "Medium urgency; POV selected for balanced participation")
	})

	t.Run("iceberg liquidity statement", func(t *testing.T) {
		ctx := domain.Context{SizeVsADV: 0.05, LiquidityBucket: "Low"}
		sel := domain.Selection{Algo: domain.AlgoICEBERG, Source: domain.SelectedByScore}
		assert.Contains(t, selectionReasons(ctx, sel), "Low liquidity favors ICEBERG to minimize market impact")
	})

	t.Run("pattern basis tag", func(t *testing.T) {
		ctx := domain.Context{SizeVsADV: 0.05}
		sel := domain.Selection{Algo: domain.AlgoPOV, Source: domain.SelectedByPattern}
		assert.Contains(t, selectionReasons(ctx, sel), "Algo: POV (historical preference)")
	})
}
