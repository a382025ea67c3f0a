// Package engine implements the prefill decision pipeline: context
// derivation, hard rules, historical pattern matching, algorithm scoring,
// parameter synthesis and explanation assembly. Every stage is a pure
// function over immutable inputs; the only state is the configuration.
package engine

import "github.com/aristath/precept/internal/config"

// Config carries every tunable threshold the pipeline uses. Values are
// calibration constants, not request data.
type Config struct {
	// Urgency cutoffs in minutes to close. Below ImminentMinutes is High,
	// below FullSessionMinutes is Medium, everything else Low. Boundaries
	// are half-open: the cutoff value itself takes the less urgent branch.
	ImminentMinutes    int
	FullSessionMinutes int

	// EndOfDayWindowMinutes is the close-proximity window for the EOD
	// participation rule.
	EndOfDayWindowMinutes int

	// Intraday volatility bucket cutoffs (inclusive upper bounds).
	VolLowMax    float64
	VolMediumMax float64

	// Liquidity bucket cutoffs on ADV (inclusive lower bounds).
	ADVHighMin   float64
	ADVMediumMin float64

	// Size bucket cutoffs on size_vs_adv (exclusive upper bounds).
	SizeSmallMax  float64
	SizeMediumMax float64

	// LargeOrderLimitRatio forces a Limit order above this size_vs_adv.
	LargeOrderLimitRatio float64

	// MarketOrderMaxSpread is the widest spread at which an urgent order
	// in a liquid name may go out as a Market order.
	MarketOrderMaxSpread float64

	// Pattern evidence: minimum matching rows for a precedent to count,
	// and how close (in score points) the precedent must be to the top
	// score to win a near-tie.
	PatternMinSupport     int
	PatternTieBreakMargin float64

	// Defaults used when a market snapshot is missing or degenerate.
	DefaultIntradayVol   float64
	DefaultLastTradeSize float64

	// DefaultParticipation is the POV participation base when the client
	// profile carries none.
	DefaultParticipation float64

	// FatFingerMultiple scales the client's typical size ratio into the
	// fat-finger tolerance.
	FatFingerMultiple float64
}

// DefaultConfig returns the calibrated production thresholds.
func DefaultConfig() Config {
	return Config{
		ImminentMinutes:       15,
		FullSessionMinutes:    60,
		EndOfDayWindowMinutes: 15,
		VolLowMax:             0.01,
		VolMediumMax:          0.02,
		ADVHighMin:            50_000_000,
		ADVMediumMin:          5_000_000,
		SizeSmallMax:          0.05,
		SizeMediumMax:         0.20,
		LargeOrderLimitRatio:  0.25,
		MarketOrderMaxSpread:  0.10,
		PatternMinSupport:     3,
		PatternTieBreakMargin: 1.0,
		DefaultIntradayVol:    0.015,
		DefaultLastTradeSize:  500,
		DefaultParticipation:  0.10,
		FatFingerMultiple:     3.0,
	}
}

// FromPipelineConfig overlays environment-supplied overrides onto the
// defaults. Zero values mean "keep the default".
func FromPipelineConfig(pc config.PipelineConfig) Config {
	cfg := DefaultConfig()
	if pc.ImminentMinutes > 0 {
		cfg.ImminentMinutes = pc.ImminentMinutes
	}
	if pc.FullSessionMinutes > 0 {
		cfg.FullSessionMinutes = pc.FullSessionMinutes
	}
	if pc.LargeOrderLimitRatio > 0 {
		cfg.LargeOrderLimitRatio = pc.LargeOrderLimitRatio
	}
	if pc.PatternMinSupport > 0 {
		cfg.PatternMinSupport = pc.PatternMinSupport
	}
	if pc.PatternTieBreakMargin > 0 {
		cfg.PatternTieBreakMargin = pc.PatternTieBreakMargin
	}
	return cfg
}
