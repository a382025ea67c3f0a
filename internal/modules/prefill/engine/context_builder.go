package engine

import (
	"strings"
	"time"

	"github.com/aristath/precept/internal/modules/prefill/domain"
	"github.com/aristath/precept/internal/modules/refdata"
	"github.com/aristath/precept/pkg/formulas"
)

// BuildContext derives every signal later stages read: size vs ADV,
// volatility/liquidity/urgency buckets, notes flags and intents, effective
// time to close, and the fat-finger check. Missing reference rows degrade
// to documented defaults; this function never fails.
func BuildContext(req domain.OrderRequest, data *refdata.Dataset, cfg Config, now time.Time) domain.Context {
	client, haveClient := data.Client(req.ClientID)
	instrument, haveInstrument := data.Instrument(req.Symbol)
	snapshot, haveSnapshot := data.Snapshot(req.Symbol)

	adv := 1.0
	if haveInstrument {
		adv = instrument.ADV
	}
	sizeVsADV := 0.0
	if adv != 0 {
		sizeVsADV = float64(req.OrderSize) / adv
	}

	tickSize := 0.01
	if haveInstrument && instrument.TickSize > 0 {
		tickSize = instrument.TickSize
	}

	spread := 0.0
	intradayVol := cfg.DefaultIntradayVol
	avgTradeSize := cfg.DefaultLastTradeSize
	var bid, ask, ltp *float64
	if haveSnapshot {
		spread = snapshot.Spread
		if snapshot.IntradayVol > 0 {
			intradayVol = snapshot.IntradayVol
		}
		if snapshot.LastTradeSize > 0 {
			avgTradeSize = snapshot.LastTradeSize
		}
		bid = snapshot.Bid
		ask = snapshot.Ask
		ltp = snapshot.LTP
	}

	flags := parseNotesFlags(req.Notes)
	intents := parseNotesIntents(req.Notes)

	ttcRequest := req.TimeToClose
	ttcSystem := systemMinutesToClose(now)
	effectiveTTC := combineTimeToClose(ttcRequest, ttcSystem)

	urgency := urgencyFromTimeToClose(effectiveTTC, cfg)
	switch intents.UrgencyIntent {
	case "HIGH":
		urgency = "High"
	case "MEDIUM":
		if urgency == "Low" {
			urgency = "Medium"
		}
	}
	// A LOW intent is a soft preference; it never downgrades urgency.

	ctx := domain.Context{
		ClientID:  req.ClientID,
		Symbol:    req.Symbol,
		Direction: req.Direction,
		OrderSize: req.OrderSize,
		Notes:     req.Notes,

		ADV:       adv,
		SizeVsADV: sizeVsADV,

		Spread:       spread,
		IntradayVol:  intradayVol,
		AvgTradeSize: avgTradeSize,
		Bid:          bid,
		Ask:          ask,
		LTP:          ltp,
		TickSize:     tickSize,

		VolatilityBucket: volatilityBucket(intradayVol, cfg),
		LiquidityBucket:  liquidityBucket(instrument, haveInstrument, cfg),
		LiquidityScore:   liquidityScore(adv, spread, avgTradeSize),

		UrgencyLevel:         urgency,
		TimeToCloseRequest:   ttcRequest,
		TimeToCloseSystem:    ttcSystem,
		EffectiveTimeToClose: effectiveTTC,

		Flags:   flags,
		Intents: intents,

		ClientAggressionBias: "Medium",
	}

	if haveClient {
		ctx.ClientPreferredAlgo = client.PreferredAlgo
		if client.AggressionBias != "" {
			ctx.ClientAggressionBias = client.AggressionBias
		}
		ctx.ClientParticipationPref = client.ParticipationPref
	}

	ctx.FatFingerFlag, ctx.SizeTolerance = fatFingerCheck(req, sizeVsADV, data.OrdersForClient(req.ClientID), cfg)

	return ctx
}

// urgencyFromTimeToClose maps minutes to close onto an urgency level.
// Boundaries are half-open: exactly ImminentMinutes is Medium, exactly
// FullSessionMinutes is Low.
func urgencyFromTimeToClose(minutes int, cfg Config) string {
	if minutes < cfg.ImminentMinutes {
		return "High"
	}
	if minutes < cfg.FullSessionMinutes {
		return "Medium"
	}
	return "Low"
}

// systemMinutesToClose derives minutes until a 16:00 close from the clock.
func systemMinutesToClose(now time.Time) int {
	closeAt := time.Date(now.Year(), now.Month(), now.Day(), 16, 0, 0, 0, now.Location())
	minutes := int(closeAt.Sub(now).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// combineTimeToClose picks the effective horizon from the request-supplied
// and clock-derived values. After hours the system value collapses to zero,
// so a positive request value wins; with both positive the tighter bound
// applies.
func combineTimeToClose(request, system int) int {
	switch {
	case system <= 0 && request > 0:
		return request
	case request <= 0 && system > 0:
		return system
	case request > 0 && system > 0:
		if request < system {
			return request
		}
		return system
	default:
		return 0
	}
}

func parseNotesFlags(notes string) domain.NotesFlags {
	text := strings.ToLower(notes)
	return domain.NotesFlags{
		MentionsVWAP:      strings.Contains(text, "vwap"),
		MentionsUrgent:    strings.Contains(text, "urgent"),
		MentionsClose:     strings.Contains(text, "close"),
		MentionsBenchmark: strings.Contains(text, "benchmark"),
	}
}

// parseNotesIntents extracts phrase-level intents from the notes. All
// matching is deterministic keyword work; a later phrase can refine an
// earlier one (arrival-price wins over a bare "vwap " mention).
func parseNotesIntents(notes string) domain.NotesIntents {
	text := strings.ToLower(notes)
	var intents domain.NotesIntents

	if strings.Contains(text, "vwap benchmark") ||
		strings.Contains(text, "benchmark: vwap") ||
		strings.Contains(text, "vwap ") {
		intents.BenchmarkType = "VWAP"
	}
	if strings.Contains(text, "benchmark: arrival price") || strings.Contains(text, "arrival price") {
		intents.BenchmarkType = "ARRIVAL"
	}

	switch {
	case strings.Contains(text, "eod compliance required") || strings.Contains(text, "must complete by close"):
		intents.UrgencyIntent = "HIGH"
		intents.CompletionRequired = true
	case strings.Contains(text, "must complete"):
		intents.UrgencyIntent = "HIGH"
		intents.CompletionRequired = true
	case strings.Contains(text, "urgent"):
		intents.UrgencyIntent = "HIGH"
	case strings.Contains(text, "steady execution"):
		intents.UrgencyIntent = "MEDIUM"
	}

	if strings.Contains(text, "minimize market impact") || strings.Contains(text, "minimise market impact") {
		intents.ImpactSensitive = true
		intents.AggressionPref = "LOW"
	}
	if strings.Contains(text, "steady execution") && intents.AggressionPref == "" {
		intents.AggressionPref = "MEDIUM"
	}

	return intents
}

func volatilityBucket(intradayVol float64, cfg Config) string {
	if intradayVol <= cfg.VolLowMax {
		return "Low"
	}
	if intradayVol <= cfg.VolMediumMax {
		return "Medium"
	}
	return "High"
}

// liquidityBucket classifies an instrument from its ADV. An unknown
// instrument or a zero ADV is treated as Medium rather than Low: unknown
// liquidity is not the same as thin liquidity.
func liquidityBucket(instrument refdata.InstrumentProfile, known bool, cfg Config) string {
	if !known || instrument.ADV <= 0 {
		return "Medium"
	}
	if instrument.ADV >= cfg.ADVHighMin {
		return "High"
	}
	if instrument.ADV >= cfg.ADVMediumMin {
		return "Medium"
	}
	return "Low"
}

// liquidityScore is a heuristic proxy: more ADV and larger trades push it
// up, wider spreads pull it down.
func liquidityScore(adv, spread, avgTradeSize float64) float64 {
	advNorm := adv / 1e6
	tradeNorm := avgTradeSize / 1000.0
	spreadPenalty := spread
	if spreadPenalty < 0.01 {
		spreadPenalty = 0.01
	}
	return (advNorm*0.6 + tradeNorm*0.4) / spreadPenalty
}

// fatFingerCheck compares the order's size ratio with the client's typical
// historical bucket. The tolerance is the median bucket ratio times a fixed
// multiple; anything above it flags the order. History for the same symbol
// is preferred, falling back to all of the client's orders.
func fatFingerCheck(req domain.OrderRequest, sizeVsADV float64, history []refdata.HistoricalOrder, cfg Config) (bool, *float64) {
	if len(history) == 0 {
		return false, nil
	}

	bucketRatio := map[string]float64{
		"small":  0.02,
		"medium": 0.10,
		"large":  0.30,
	}

	subset := make([]refdata.HistoricalOrder, 0, len(history))
	for _, o := range history {
		if o.Symbol == req.Symbol {
			subset = append(subset, o)
		}
	}
	if len(subset) == 0 {
		subset = history
	}

	ratios := make([]float64, 0, len(subset))
	for _, o := range subset {
		if r, ok := bucketRatio[o.SizeBucket]; ok {
			ratios = append(ratios, r)
		}
	}
	if len(ratios) == 0 {
		return false, nil
	}

	tolerance := formulas.Median(ratios) * cfg.FatFingerMultiple
	return sizeVsADV > tolerance, &tolerance
}
