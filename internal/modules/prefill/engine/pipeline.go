package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/precept/internal/modules/prefill/domain"
	"github.com/aristath/precept/internal/modules/refdata"
)

// Pipeline runs the decision stages in a fixed order: context, rules,
// pattern, scoring, parameters, explanations. It holds no mutable state;
// every invocation is a pure function of the request, the dataset snapshot
// and the supplied clock reading, so concurrent calls never contend.
type Pipeline struct {
	cfg Config
	log zerolog.Logger
}

// NewPipeline creates a pipeline with the given decision constants.
func NewPipeline(cfg Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		log: log.With().Str("component", "prefill_pipeline").Logger(),
	}
}

// Run produces a complete recommendation for one order request. It never
// fails: missing reference rows degrade to documented defaults inside the
// context stage, and insufficient history simply drops the pattern signal.
func (p *Pipeline) Run(req domain.OrderRequest, data *refdata.Dataset, now time.Time) domain.Recommendation {
	started := time.Now()

	ctx := BuildContext(req, data, p.cfg, now)
	rule := ApplyRules(ctx, p.cfg)
	pattern := MatchPattern(ctx, data.OrdersForClient(req.ClientID), p.cfg)
	sel := ScoreAlgos(ctx, rule, pattern, p.cfg)
	core, params, paramReasons := BuildTicket(ctx, rule, pattern, sel, p.cfg, now)

	var patternReasons []string
	if pattern.Usable(p.cfg.PatternMinSupport) {
		patternReasons = pattern.Reasons
	}
	explanations := BuildExplanations(rule.Reasons, patternReasons, sel.Reasons, paramReasons)

	p.log.Debug().
		Str("client_id", req.ClientID).
		Str("symbol", req.Symbol).
		Str("algo", sel.Algo).
		Str("source", sel.Source).
		Dur("duration_ms", time.Since(started)).
		Msg("Recommendation built")

	return domain.Recommendation{
		CoreOrderFields: core,
		AlgoParameters:  params,
		ContextFlags:    contextFlags(ctx),
		Explanations:    explanations,
	}
}

// contextFlags mirrors the derived context back to the caller. The size
// ratio is rounded for presentation; internal stages keep full precision.
func contextFlags(ctx domain.Context) domain.ContextFlags {
	return domain.ContextFlags{
		UrgencyLevel:         ctx.UrgencyLevel,
		SizeVsADV:            math.Round(ctx.SizeVsADV*100) / 100,
		VolatilityBucket:     ctx.VolatilityBucket,
		LiquidityBucket:      ctx.LiquidityBucket,
		Spread:               ctx.Spread,
		IntradayVol:          ctx.IntradayVol,
		AvgTradeSize:         ctx.AvgTradeSize,
		LiquidityScore:       ctx.LiquidityScore,
		TimeToCloseRequest:   ctx.TimeToCloseRequest,
		TimeToCloseSystem:    ctx.TimeToCloseSystem,
		EffectiveTimeToClose: ctx.EffectiveTimeToClose,
		FatFingerFlag:        ctx.FatFingerFlag,
	}
}
