package engine

import (
	"github.com/aristath/precept/internal/modules/prefill/domain"
)

// Thresholds used only by scoring indicators.
const (
	scoreSizeMediumMin = 0.10 // above this ratio an order counts as medium-sized
	scoreUrgentTTCMax  = 20   // at or under this many minutes, urgency scores as imminent
	scoreLiqThinMax    = 0.8  // liquidity score below this counts as thin
	scoreLiqDeepMin    = 1.2  // liquidity score above this counts as deep
)

// indicator is one row of the weight table: a named condition over the
// context and the weight it contributes to each algorithm when it holds.
type indicator struct {
	name    string
	applies func(ctx domain.Context, cfg Config) bool
	weights map[string]float64
}

// weightTable is the scoring configuration. Rows derived from the same
// signal carry mutually exclusive conditions, so each signal contributes
// to the totals at most once.
var weightTable = []indicator{
	{
		name: "size_block",
		applies: func(ctx domain.Context, cfg Config) bool {
			return ctx.SizeVsADV > cfg.LargeOrderLimitRatio
		},
		weights: map[string]float64{domain.AlgoVWAP: 3, domain.AlgoPOV: 1},
	},
	{
		name: "size_medium",
		applies: func(ctx domain.Context, cfg Config) bool {
			return ctx.SizeVsADV > scoreSizeMediumMin && ctx.SizeVsADV <= cfg.LargeOrderLimitRatio
		},
		weights: map[string]float64{domain.AlgoVWAP: 2},
	},
	{
		name: "size_small",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.SizeVsADV <= scoreSizeMediumMin
		},
		weights: map[string]float64{domain.AlgoPOV: 1},
	},
	{
		name: "urgency_imminent",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.UrgencyLevel == "High" || ctx.EffectiveTimeToClose <= scoreUrgentTTCMax
		},
		weights: map[string]float64{domain.AlgoPOV: 4},
	},
	{
		name: "urgency_medium",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.UrgencyLevel == "Medium" && ctx.EffectiveTimeToClose > scoreUrgentTTCMax
		},
		weights: map[string]float64{domain.AlgoPOV: 1.5},
	},
	{
		name: "urgency_low",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.UrgencyLevel == "Low" && ctx.EffectiveTimeToClose > scoreUrgentTTCMax
		},
		weights: map[string]float64{domain.AlgoVWAP: 1},
	},
	{
		name: "completion_required",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.CompletionRequired
		},
		weights: map[string]float64{domain.AlgoPOV: 3},
	},
	{
		name: "volatility_low",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.VolatilityBucket == "Low"
		},
		weights: map[string]float64{domain.AlgoVWAP: 2},
	},
	{
		name: "volatility_high",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.VolatilityBucket == "High"
		},
		weights: map[string]float64{domain.AlgoPOV: 1.5, domain.AlgoICEBERG: 1.5},
	},
	{
		name: "liquidity_thin",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.LiquidityBucket == "Low" || ctx.LiquidityScore < scoreLiqThinMax
		},
		weights: map[string]float64{domain.AlgoICEBERG: 3},
	},
	{
		name: "liquidity_deep",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.LiquidityBucket == "High" && ctx.LiquidityScore > scoreLiqDeepMin
		},
		weights: map[string]float64{domain.AlgoPOV: 1},
	},
	{
		name: "benchmark_vwap",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.BenchmarkType == "VWAP"
		},
		weights: map[string]float64{domain.AlgoVWAP: 5},
	},
	{
		name: "benchmark_arrival",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.BenchmarkType == "ARRIVAL"
		},
		weights: map[string]float64{domain.AlgoPOV: 2},
	},
	{
		name: "impact_sensitive",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.ImpactSensitive
		},
		weights: map[string]float64{domain.AlgoICEBERG: 3, domain.AlgoVWAP: 1},
	},
	{
		name: "aggression_pref_high",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.AggressionPref == "HIGH"
		},
		weights: map[string]float64{domain.AlgoPOV: 2},
	},
	{
		name: "aggression_pref_low",
		applies: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.AggressionPref == "LOW"
		},
		weights: map[string]float64{domain.AlgoVWAP: 1.5, domain.AlgoICEBERG: 1},
	},
}
