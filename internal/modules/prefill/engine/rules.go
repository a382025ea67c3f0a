package engine

import (
	"github.com/aristath/precept/internal/modules/prefill/domain"
)

// rule is one entry in the ordered rule table. when decides whether the
// rule fires; then applies its effect to the accumulated result. Effects
// that must not clobber a higher-priority rule check for an existing value
// themselves.
type rule struct {
	name string
	when func(ctx domain.Context, cfg Config) bool
	then func(res *domain.RuleResult)
}

// ruleTable holds the hard overrides in priority order. Earlier rules win:
// the interpreter walks the table top to bottom and effects guard against
// overwriting fields already set.
var ruleTable = []rule{
	{
		name: "vwap_benchmark",
		when: func(ctx domain.Context, _ Config) bool {
			return ctx.Flags.MentionsVWAP || ctx.Intents.BenchmarkType == "VWAP"
		},
		then: func(res *domain.RuleResult) {
			res.Algo = domain.AlgoVWAP
			res.Reasons = append(res.Reasons, "Algo: VWAP (notes benchmark)")
		},
	},
	{
		name: "completion_required",
		when: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.CompletionRequired
		},
		then: func(res *domain.RuleResult) {
			if res.Algo == "" {
				res.Algo = domain.AlgoPOV
				res.Reasons = append(res.Reasons, "Algo: POV (must complete by close)")
			}
			res.Aggression = "High"
			res.Reasons = append(res.Reasons, "Aggression: High (completion required)")
		},
	},
	{
		name: "high_urgency_aggression",
		when: func(ctx domain.Context, _ Config) bool {
			return ctx.UrgencyLevel == "High"
		},
		then: func(res *domain.RuleResult) {
			if res.Aggression == "" {
				res.Aggression = "High"
				res.Reasons = append(res.Reasons, "Aggression: High (urgency)")
			}
		},
	},
	{
		name: "large_order_limit",
		when: func(ctx domain.Context, cfg Config) bool {
			return ctx.SizeVsADV > cfg.LargeOrderLimitRatio
		},
		then: func(res *domain.RuleResult) {
			res.OrderType = "Limit"
			res.Reasons = append(res.Reasons, "Order type: Limit (>25% ADV)")
		},
	},
	{
		name: "impact_thin_liquidity",
		when: func(ctx domain.Context, _ Config) bool {
			return ctx.Intents.ImpactSensitive && ctx.LiquidityBucket == "Low"
		},
		then: func(res *domain.RuleResult) {
			if res.OrderType == "" {
				res.OrderType = "Limit"
			}
			res.Reasons = append(res.Reasons, "Order type: Limit (impact-sensitive, thin liquidity)")
		},
	},
	{
		name: "eod_window_pov",
		when: func(ctx domain.Context, cfg Config) bool {
			return ctx.Flags.MentionsClose || ctx.EffectiveTimeToClose < cfg.EndOfDayWindowMinutes
		},
		then: func(res *domain.RuleResult) {
			if res.Algo == "" {
				res.Algo = domain.AlgoPOV
				res.Reasons = append(res.Reasons, "Algo: POV (EOD urgency)")
			}
		},
	},
}

// ApplyRules runs the rule table against a built context. The result's
// empty fields mean "no override"; scoring and parameter selection fill
// them from other signals.
func ApplyRules(ctx domain.Context, cfg Config) domain.RuleResult {
	var res domain.RuleResult
	for _, r := range ruleTable {
		if r.when(ctx, cfg) {
			r.then(&res)
		}
	}
	return res
}
