package engine

import (
	"fmt"
	"math"

	"github.com/aristath/precept/internal/modules/prefill/domain"
)

// vwapSizeStatementMin is the size ratio above which the explanation calls
// out order size as a factor in a VWAP selection.
const vwapSizeStatementMin = 0.15

// ScoreAlgos totals the weight table for every candidate and picks one.
// Precedence: a rule override wins outright (scores are still reported for
// transparency), then a usable pattern whose algo scores within the
// tie-break margin of the top score, then the top score itself. Equal top
// scores resolve by the fixed candidate priority in domain.Algos.
func ScoreAlgos(ctx domain.Context, rule domain.RuleResult, pattern *domain.PatternResult, cfg Config) domain.Selection {
	scores := make(map[string]float64, len(domain.Algos))
	for _, algo := range domain.Algos {
		scores[algo] = 0
	}
	for _, ind := range weightTable {
		if !ind.applies(ctx, cfg) {
			continue
		}
		for algo, w := range ind.weights {
			scores[algo] += w
		}
	}

	best := domain.Algos[0]
	for _, algo := range domain.Algos[1:] {
		if scores[algo] > scores[best] {
			best = algo
		}
	}

	sel := domain.Selection{Scores: scores}
	switch {
	case rule.Algo != "":
		sel.Algo = rule.Algo
		sel.Source = domain.SelectedByRule
	case pattern.Usable(cfg.PatternMinSupport) && scores[pattern.Algo] >= scores[best]-cfg.PatternTieBreakMargin:
		sel.Algo = pattern.Algo
		sel.Source = domain.SelectedByPattern
	default:
		sel.Algo = best
		sel.Source = domain.SelectedByScore
	}

	sel.Reasons = selectionReasons(ctx, sel)
	return sel
}

// selectionReasons assembles the statements explaining the chosen algo.
// The size statement is always present, so explanations are never empty.
func selectionReasons(ctx domain.Context, sel domain.Selection) []string {
	reasons := []string{
		fmt.Sprintf("Order size is %d%% of ADV", int(math.Round(ctx.SizeVsADV*100))),
	}

	switch sel.Algo {
	case domain.AlgoVWAP:
		if ctx.VolatilityBucket == "Low" {
			reasons = append(reasons, "Low volatility favors VWAP strategy")
		}
		if ctx.SizeVsADV > vwapSizeStatementMin {
			reasons = append(reasons, "Large order size favors VWAP execution")
		}
	case domain.AlgoPOV:
		switch ctx.UrgencyLevel {
		case "High":
			reasons = append(reasons, "High urgency favors POV (participation) strategy")
		case "Medium":
			reasons = append(reasons, "Medium urgency; POV selected for balanced participation")
		}
	case domain.AlgoICEBERG:
		if ctx.LiquidityBucket == "Low" {
			reasons = append(reasons, "Low liquidity favors ICEBERG to minimize market impact")
		}
	}

	switch sel.Source {
	case domain.SelectedByRule:
		reasons = append(reasons, fmt.Sprintf("Algo: %s (rule override)", sel.Algo))
	case domain.SelectedByPattern:
		reasons = append(reasons, fmt.Sprintf("Algo: %s (historical preference)", sel.Algo))
	}

	return reasons
}
