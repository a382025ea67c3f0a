// Package domain defines the request, context and result types that flow
// through the prefill decision pipeline.
package domain

// Execution algorithm candidates, in tie-break priority order.
const (
	AlgoVWAP    = "VWAP"
	AlgoPOV     = "POV"
	AlgoICEBERG = "ICEBERG"
)

// Algos lists every candidate algorithm. Order matters: equal top scores
// resolve to the earliest entry.
var Algos = []string{AlgoVWAP, AlgoPOV, AlgoICEBERG}

// Selection sources.
const (
	SelectedByRule    = "rule"
	SelectedByPattern = "pattern"
	SelectedByScore   = "score"
)

// OrderRequest is the caller-supplied order to prefill.
type OrderRequest struct {
	ClientID    string `json:"client_id"`
	Symbol      string `json:"symbol"`
	OrderSize   int    `json:"order_size"`
	Direction   string `json:"direction"`
	TimeToClose int    `json:"time_to_close"`
	Notes       string `json:"notes,omitempty"`
}

// NotesFlags are simple keyword hits in the free-text notes.
type NotesFlags struct {
	MentionsVWAP      bool
	MentionsUrgent    bool
	MentionsClose     bool
	MentionsBenchmark bool
}

// NotesIntents are richer phrase-level signals extracted from the notes.
// Empty strings mean the intent was not expressed.
type NotesIntents struct {
	UrgencyIntent      string // "LOW", "MEDIUM", "HIGH"
	BenchmarkType      string // "VWAP", "ARRIVAL"
	AggressionPref     string // "LOW", "MEDIUM", "HIGH"
	CompletionRequired bool
	ImpactSensitive    bool
}

// Context is the enriched, immutable view of one order request. Built once
// per request; every later stage reads it and none mutates it.
type Context struct {
	ClientID  string
	Symbol    string
	Direction string
	OrderSize int
	Notes     string

	ADV       float64
	SizeVsADV float64

	Spread       float64
	IntradayVol  float64
	AvgTradeSize float64
	Bid          *float64
	Ask          *float64
	LTP          *float64
	TickSize     float64

	VolatilityBucket string
	LiquidityBucket  string
	LiquidityScore   float64

	UrgencyLevel         string
	TimeToCloseRequest   int
	TimeToCloseSystem    int
	EffectiveTimeToClose int

	Flags   NotesFlags
	Intents NotesIntents

	ClientPreferredAlgo     string
	ClientAggressionBias    string
	ClientParticipationPref float64

	FatFingerFlag bool
	SizeTolerance *float64
}

// RuleResult holds the hard overrides produced by the rule pass. Empty
// strings mean no override for that field. Overrides are non-negotiable
// for later stages.
type RuleResult struct {
	Algo       string
	Aggression string
	OrderType  string
	Reasons    []string
}

// PatternResult is the historical precedent mined for this request.
type PatternResult struct {
	Algo         string
	Aggression   string
	SizeBucket   string
	SupportCount int
	Reasons      []string
}

// Usable reports whether the precedent has enough supporting history to
// influence the decision. A computed result below the threshold is treated
// as absent downstream.
func (p *PatternResult) Usable(minSupport int) bool {
	return p != nil && p.Algo != "" && p.SupportCount >= minSupport
}

// Selection is the outcome of algorithm scoring: exactly one algo, how it
// was chosen, and the score table that led there.
type Selection struct {
	Algo    string
	Source  string
	Scores  map[string]float64
	Reasons []string
}

// CoreOrderFields is the prefilled core of the order ticket.
type CoreOrderFields struct {
	OrderType   string   `json:"order_type"`
	LimitPrice  *float64 `json:"limit_price"`
	Direction   string   `json:"direction"`
	TimeInForce string   `json:"time_in_force"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	AlgoType    string   `json:"algo_type"`
}

// AlgoParameters carries every algo-specific key. The schema is fixed:
// keys that do not apply to the selected algorithm stay null.
type AlgoParameters struct {
	ParticipationRate *float64 `json:"participation_rate"`
	MinClipSize       *int     `json:"min_clip_size"`
	MaxClipSize       *int     `json:"max_clip_size"`
	VolumeCurve       *string  `json:"volume_curve"`
	MaxVolumePct      *float64 `json:"max_volume_pct"`
	DisplayQuantity   *int     `json:"display_quantity"`
	AggressionLevel   string   `json:"aggression_level"`
}

// ContextFlags mirrors the derived context back to the caller.
type ContextFlags struct {
	UrgencyLevel         string  `json:"urgency_level"`
	SizeVsADV            float64 `json:"size_vs_adv"`
	VolatilityBucket     string  `json:"volatility_bucket"`
	LiquidityBucket      string  `json:"liquidity_bucket"`
	Spread               float64 `json:"spread"`
	IntradayVol          float64 `json:"intraday_vol"`
	AvgTradeSize         float64 `json:"avg_trade_size"`
	LiquidityScore       float64 `json:"liquidity_score"`
	TimeToCloseRequest   int     `json:"time_to_close_request"`
	TimeToCloseSystem    int     `json:"time_to_close_system"`
	EffectiveTimeToClose int     `json:"effective_time_to_close"`
	FatFingerFlag        bool    `json:"fat_finger_flag"`
}

// Recommendation is the full pipeline output: prefilled ticket, context
// transparency block, and ordered explanations.
type Recommendation struct {
	CoreOrderFields CoreOrderFields `json:"core_order_fields"`
	AlgoParameters  AlgoParameters  `json:"algo_parameters"`
	ContextFlags    ContextFlags    `json:"context_flags"`
	Explanations    []string        `json:"explanations"`
}
