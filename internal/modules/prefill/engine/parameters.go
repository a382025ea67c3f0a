package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/precept/internal/modules/prefill/domain"
)

// Execution window caps in minutes by urgency, plus the floor applied
// whenever any time remains on the clock.
const (
	windowHighMax   = 30
	windowMediumMax = 90
	windowLowMax    = 240
	windowFloorMin  = 10
)

// POV participation adjustments.
const (
	povRateCap        = 0.30
	povRateFloor      = 0.05
	povArrivalBump    = 0.02
	povUrgencyBump    = 0.05
	povImpactDiscount = 0.03
)

// BuildTicket fills the core order fields and the parameter block for the
// selected algorithm. The returned reasons are in emission order: core
// field derivations first, then aggression, then algo-specific values,
// then the size warning when the fat-finger check fired.
func BuildTicket(ctx domain.Context, rule domain.RuleResult, pattern *domain.PatternResult, sel domain.Selection, cfg Config, now time.Time) (domain.CoreOrderFields, domain.AlgoParameters, []string) {
	reasons := make([]string, 0, 8)

	orderType, orderTypeReason := resolveOrderType(ctx, rule, cfg)
	reasons = append(reasons, orderTypeReason)

	var limitPrice *float64
	if orderType == "Limit" || orderType == "Stop" {
		limitPrice = bandedLimitPrice(ctx)
		if limitPrice != nil {
			reasons = append(reasons, "Limit: bid/ask band")
		}
	}

	start := sessionStart(now)
	window := executionWindow(ctx)
	end := sessionEnd(start, window)

	tif := "DAY"
	if ctx.UrgencyLevel == "High" {
		tif = "IOC"
	}
	reasons = append(reasons, fmt.Sprintf("TIF: %s (%dm window)", tif, window))

	core := domain.CoreOrderFields{
		OrderType:   orderType,
		LimitPrice:  limitPrice,
		Direction:   ctx.Direction,
		TimeInForce: tif,
		StartTime:   start.Format("15:04"),
		EndTime:     end.Format("15:04"),
		AlgoType:    sel.Algo,
	}

	params, paramReasons := buildAlgoParameters(ctx, rule, pattern, sel.Algo, cfg)
	reasons = append(reasons, paramReasons...)

	if ctx.FatFingerFlag && ctx.SizeTolerance != nil {
		reasons = append(reasons, fmt.Sprintf("Size flag: %d%% of ADV exceeds client norm %d%%",
			int(math.Round(ctx.SizeVsADV*100)), int(math.Round(*ctx.SizeTolerance*100))))
	}

	return core, params, reasons
}

// resolveOrderType picks the order type: rule override first, then an
// explicit stop request in the notes. A Market order is only allowed for
// urgent orders in liquid names with a tight spread; everything else
// defaults to Limit.
func resolveOrderType(ctx domain.Context, rule domain.RuleResult, cfg Config) (string, string) {
	switch {
	case rule.OrderType != "":
		return rule.OrderType, fmt.Sprintf("Order type: %s (rule)", rule.OrderType)
	case strings.Contains(strings.ToLower(ctx.Notes), "stop"):
		return "Stop", "Order type: Stop (notes)"
	case ctx.UrgencyLevel == "High" &&
		(ctx.LiquidityBucket == "High" || ctx.LiquidityBucket == "Medium") &&
		ctx.Spread <= cfg.MarketOrderMaxSpread:
		return "Market", "Order type: Market (urgency, liquidity)"
	default:
		return "Limit", "Order type: Limit"
	}
}

// bandedLimitPrice prices a Limit or Stop order off the bid/ask band: the
// mid adjusted by half the spread toward the side that favors the order
// (up for buys, down for sells), rounded to the instrument tick. Missing
// quotes are reconstructed from the other side and the spread, or from the
// last trade price. Returns nil when no price reference exists at all.
func bandedLimitPrice(ctx domain.Context) *float64 {
	bid, ask := ctx.Bid, ctx.Ask
	switch {
	case bid == nil && ask == nil:
		if ctx.LTP == nil || *ctx.LTP == 0 {
			return nil
		}
		bid, ask = ctx.LTP, ctx.LTP
	case bid == nil:
		v := *ask - ctx.Spread
		bid = &v
	case ask == nil:
		v := *bid + ctx.Spread
		ask = &v
	}

	spread := ctx.Spread
	if spread <= 0 {
		spread = math.Max(*ask-*bid, 0.01)
	}

	mid := (*bid + *ask) / 2
	var price float64
	if strings.EqualFold(ctx.Direction, "Buy") {
		price = mid + spread/2
	} else {
		price = mid - spread/2
	}
	price = roundToTick(price, ctx.TickSize)
	return &price
}

// roundToTick snaps a price to the nearest tick. The second rounding
// shakes off binary-fraction dust from the division so prices serialize
// cleanly.
func roundToTick(price, tick float64) float64 {
	if tick <= 0 {
		tick = 0.01
	}
	ticks := math.Round(price / tick)
	return math.Round(ticks*tick*1e6) / 1e6
}

// sessionStart normalizes the clock to a plausible intraday start: the
// current minute when inside the 09:30 to 15:55 session, otherwise 10:00.
func sessionStart(now time.Time) time.Time {
	t := now.Truncate(time.Minute)
	open := time.Date(t.Year(), t.Month(), t.Day(), 9, 30, 0, 0, t.Location())
	last := time.Date(t.Year(), t.Month(), t.Day(), 15, 55, 0, 0, t.Location())
	if t.Before(open) || t.After(last) {
		return time.Date(t.Year(), t.Month(), t.Day(), 10, 0, 0, 0, t.Location())
	}
	return t
}

// executionWindow sizes the window in minutes from urgency and the
// effective time to close. Urgent orders get a tight window near the
// bell; relaxed orders can spread across most of the session. The floor
// keeps the window workable whenever any time remains.
func executionWindow(ctx domain.Context) int {
	ttc := ctx.EffectiveTimeToClose
	var window int
	switch ctx.UrgencyLevel {
	case "High":
		window = min(ttc, windowHighMax)
	case "Medium":
		window = min(ttc, windowMediumMax)
	default:
		window = min(ttc, windowLowMax)
	}
	if ttc > 0 && window < windowFloorMin {
		window = min(ttc, windowFloorMin)
	}
	return window
}

// sessionEnd is start plus the window, capped at the last session minute.
func sessionEnd(start time.Time, windowMinutes int) time.Time {
	end := start.Add(time.Duration(windowMinutes) * time.Minute)
	dayCap := time.Date(start.Year(), start.Month(), start.Day(), 15, 59, 0, 0, start.Location())
	if end.After(dayCap) {
		return dayCap
	}
	return end
}

// buildAlgoParameters populates the fixed parameter schema. Keys that do
// not apply to the selected algorithm stay nil.
func buildAlgoParameters(ctx domain.Context, rule domain.RuleResult, pattern *domain.PatternResult, algo string, cfg Config) (domain.AlgoParameters, []string) {
	aggression, reasons := resolveAggression(ctx, rule, pattern, cfg)
	params := domain.AlgoParameters{AggressionLevel: aggression}

	switch algo {
	case domain.AlgoPOV:
		base := ctx.ClientParticipationPref
		if base <= 0 {
			base = cfg.DefaultParticipation
		}
		if ctx.Intents.BenchmarkType == "ARRIVAL" {
			base = math.Min(base+povArrivalBump, povRateCap)
		}
		if ctx.UrgencyLevel == "High" {
			base = math.Min(base+povUrgencyBump, povRateCap)
		}
		if ctx.Intents.ImpactSensitive {
			base = math.Max(base-povImpactDiscount, povRateFloor)
		}
		rate := math.Round(base*100) / 100
		params.ParticipationRate = &rate
		reasons = append(reasons, fmt.Sprintf("POV participation: %d%%", int(math.Round(rate*100))))

		avgTrade := math.Max(ctx.AvgTradeSize, 100)
		minClip := max(1, int(avgTrade*0.5))
		maxClip := int(avgTrade * 2)
		params.MinClipSize = &minClip
		params.MaxClipSize = &maxClip
		reasons = append(reasons, fmt.Sprintf("POV clips: %d-%d (vs avg trade)", minClip, maxClip))

	case domain.AlgoVWAP:
		curve := "Historical"
		if ctx.Intents.BenchmarkType != "VWAP" && ctx.UrgencyLevel == "High" {
			curve = "Front-loaded"
		}
		params.VolumeCurve = &curve
		reasons = append(reasons, fmt.Sprintf("VWAP curve: %s", curve))

		maxVol := 15.0
		if ctx.VolatilityBucket == "High" {
			maxVol = 20.0
		}
		params.MaxVolumePct = &maxVol
		reasons = append(reasons, fmt.Sprintf("VWAP max vol: %d%%", int(maxVol)))

	case domain.AlgoICEBERG:
		display := min(max(1, int(ctx.ADV*0.02)), max(1, int(float64(ctx.OrderSize)*0.10)))
		if ctx.Intents.ImpactSensitive {
			display = max(1, int(float64(display)*0.7))
		}
		params.DisplayQuantity = &display
		reasons = append(reasons, fmt.Sprintf("ICEBERG display: %d", display))

		minPct, maxPct := icebergClipPcts(ctx.LiquidityBucket)
		minClip := max(1, int(float64(ctx.OrderSize)*minPct))
		maxClip := max(1, int(float64(ctx.OrderSize)*maxPct))
		params.MinClipSize = &minClip
		params.MaxClipSize = &maxClip
		reasons = append(reasons, fmt.Sprintf("ICEBERG clips: %d-%d (vs order size)", minClip, maxClip))
	}

	return params, reasons
}

// resolveAggression walks the override chain from weakest to strongest:
// client bias, notes preference, urgency escalation, historical pattern,
// rule override. Later entries overwrite earlier ones and each contributes
// its own reason.
func resolveAggression(ctx domain.Context, rule domain.RuleResult, pattern *domain.PatternResult, cfg Config) (string, []string) {
	var reasons []string

	aggression := ctx.ClientAggressionBias
	if aggression == "" {
		aggression = "Medium"
	}

	switch ctx.Intents.AggressionPref {
	case "HIGH":
		aggression = "High"
		reasons = append(reasons, "Aggression: High (notes)")
	case "LOW":
		aggression = "Low"
		reasons = append(reasons, "Aggression: Low (notes)")
	}

	if ctx.UrgencyLevel == "High" && aggression != "High" {
		aggression = "High"
		reasons = append(reasons, "Aggression: High (urgency)")
	}

	if pattern.Usable(cfg.PatternMinSupport) && pattern.Aggression != "" {
		aggression = pattern.Aggression
		reasons = append(reasons, fmt.Sprintf("Aggression: %s (history)", pattern.Aggression))
	}
	if rule.Aggression != "" {
		aggression = rule.Aggression
		reasons = append(reasons, fmt.Sprintf("Aggression: %s (rule)", rule.Aggression))
	}

	return aggression, reasons
}

// icebergClipPcts sizes ICEBERG child clips as fractions of the order,
// scaled by venue liquidity. Thin books get smaller clips.
func icebergClipPcts(liquidityBucket string) (float64, float64) {
	switch liquidityBucket {
	case "Low":
		return 0.005, 0.02
	case "High":
		return 0.02, 0.10
	default:
		return 0.01, 0.05
	}
}
