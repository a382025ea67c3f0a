package engine

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/precept/internal/modules/prefill/domain"
)

func TestPipelineReferenceScenario(t *testing.T) {
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT001",
		Symbol:      "AAPL",
		OrderSize:   15_000_000,
		Direction:   "Buy",
		TimeToClose: 120,
		Notes:       "VWAP benchmark",
	}

	rec := p.Run(req, data, testNow)

	core := rec.CoreOrderFields
	assert.Equal(t, domain.AlgoVWAP, core.AlgoType)
	assert.Equal(t, "Limit", core.OrderType)
	require.NotNil(t, core.LimitPrice)
	assert.Equal(t, 190.03, *core.LimitPrice)
	assert.Equal(t, "Buy", core.Direction)
	assert.Equal(t, "DAY", core.TimeInForce)
	assert.Equal(t, "10:00", core.StartTime)
	assert.Equal(t, "12:00", core.EndTime)

	params := rec.AlgoParameters
	require.NotNil(t, params.VolumeCurve)
	assert.Equal(t, "Historical", *params.VolumeCurve)
	require.NotNil(t, params.MaxVolumePct)
	assert.Equal(t, 15.0, *params.MaxVolumePct)
	assert.Equal(t, "Low", params.AggressionLevel)
	assert.Nil(t, params.ParticipationRate)
	assert.Nil(t, params.MinClipSize)
	assert.Nil(t, params.MaxClipSize)
	assert.Nil(t, params.DisplayQuantity)

	flags := rec.ContextFlags
	assert.Equal(t, "Low", flags.UrgencyLevel)
	assert.Equal(t, 0.18, flags.SizeVsADV)
	assert.Equal(t, "Low", flags.VolatilityBucket)
	assert.Equal(t, "High", flags.LiquidityBucket)
	assert.Equal(t, 120, flags.TimeToCloseRequest)
	assert.Equal(t, 360, flags.TimeToCloseSystem)
	assert.Equal(t, 120, flags.EffectiveTimeToClose)
	assert.False(t, flags.FatFingerFlag)

	assert.Equal(t, []string{
		"Algo: VWAP (notes benchmark)",
		"Client historically prefers VWAP (4 matches, size bucket=medium, vol=Low)",
		"Historical aggression for this context: Low",
		"Order size is 18% of ADV",
		"Low volatility favors VWAP strategy",
		"Large order size favors VWAP execution",
		"Algo: VWAP (rule override)",
		"Order type: Limit",
		"Limit: bid/ask band",
		"TIF: DAY (120m window)",
		"Aggression: Low (history)",
		"VWAP curve: Historical",
		"VWAP max vol: 15%",
	}, rec.Explanations)
}

func TestPipelineDeterminism(t *testing.T) {
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT002",
		Symbol:      "RLWY",
		OrderSize:   1_000_000,
		Direction:   "Sell",
		TimeToClose: 45,
		Notes:       "steady execution",
	}

	first := p.Run(req, data, testNow)
	second := p.Run(req, data, testNow)

	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPipelineTotality(t *testing.T) {
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())

	requests := []domain.OrderRequest{
		{ClientID: "CLT001", Symbol: "AAPL", OrderSize: 100, Direction: "Buy", TimeToClose: 0},
		{ClientID: "UNKNOWN", Symbol: "ZZZZ", OrderSize: 1, Direction: "Sell", TimeToClose: 5},
		{ClientID: "CLT004", Symbol: "KMDA", OrderSize: 90_000, Direction: "Buy", TimeToClose: 240, Notes: "minimize market impact"},
		{ClientID: "CLT002", Symbol: "RLWY", OrderSize: 3_000_000, Direction: "Sell", TimeToClose: 30, Notes: "must complete by close, use stop"},
	}

	for _, req := range requests {
		rec := p.Run(req, data, testNow)
		assert.Contains(t, domain.Algos, rec.CoreOrderFields.AlgoType)
		assert.NotEmpty(t, rec.CoreOrderFields.OrderType)
		assert.NotEmpty(t, rec.CoreOrderFields.TimeInForce)
		assert.NotEmpty(t, rec.CoreOrderFields.StartTime)
		assert.NotEmpty(t, rec.CoreOrderFields.EndTime)
		assert.NotEmpty(t, rec.AlgoParameters.AggressionLevel)
		assert.NotEmpty(t, rec.Explanations)
	}

	// The parameter schema always carries all seven keys on the wire.
	rec := p.Run(requests[0], data, testNow)
	raw, err := json.Marshal(rec.AlgoParameters)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, key := range []string{
		"participation_rate", "min_clip_size", "max_clip_size",
		"volume_curve", "max_volume_pct", "display_quantity", "aggression_level",
	} {
		assert.Contains(t, keys, key)
	}
}

func TestPipelineVWAPNotesPrecedence(t *testing.T) {
	// History, urgency and scores all point at POV; the keyword still wins.
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT002",
		Symbol:      "RLWY",
		OrderSize:   900_000,
		Direction:   "Buy",
		TimeToClose: 10,
		Notes:       "urgent, vwap please",
	}

	rec := p.Run(req, data, testNow)

	assert.Equal(t, domain.AlgoVWAP, rec.CoreOrderFields.AlgoType)
	assert.Contains(t, rec.Explanations, "Algo: VWAP (notes benchmark)")
}

func TestPipelinePatternInfluence(t *testing.T) {
	// Three POV precedents in the matching bucket and no forcing rule: the
	// precedent breaks the near-tie against the top score.
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT002",
		Symbol:      "RLWY",
		OrderSize:   1_000_000,
		Direction:   "Buy",
		TimeToClose: 45,
	}

	rec := p.Run(req, data, testNow)

	assert.Equal(t, domain.AlgoPOV, rec.CoreOrderFields.AlgoType)
	assert.Contains(t, rec.Explanations, "Algo: POV (historical preference)")
	assert.Contains(t, rec.Explanations, "Client historically prefers POV (3 matches, size bucket=medium, vol=Medium)")
}

func TestPipelineImminentBoundary(t *testing.T) {
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{ClientID: "CLT001", Symbol: "AAPL", OrderSize: 1000, Direction: "Buy"}

	req.TimeToClose = 15
	rec := p.Run(req, data, testNow)
	assert.Equal(t, "Medium", rec.ContextFlags.UrgencyLevel)
	assert.Equal(t, "DAY", rec.CoreOrderFields.TimeInForce)

	req.TimeToClose = 14
	rec = p.Run(req, data, testNow)
	assert.Equal(t, "High", rec.ContextFlags.UrgencyLevel)
	assert.Equal(t, "IOC", rec.CoreOrderFields.TimeInForce)
	// Urgent, deep book, nickel spread: the one combination that goes Market.
	assert.Equal(t, "Market", rec.CoreOrderFields.OrderType)
	assert.Nil(t, rec.CoreOrderFields.LimitPrice)
}

func TestPipelineLowUrgencyGetsPricedLimit(t *testing.T) {
	// Without urgency a liquid name still gets a priced Limit, never a
	// bare Market ticket.
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT001",
		Symbol:      "AAPL",
		OrderSize:   1000,
		Direction:   "Buy",
		TimeToClose: 240,
	}

	rec := p.Run(req, data, testNow)

	assert.Equal(t, "Low", rec.ContextFlags.UrgencyLevel)
	assert.Equal(t, "Limit", rec.CoreOrderFields.OrderType)
	require.NotNil(t, rec.CoreOrderFields.LimitPrice)
	assert.Equal(t, 190.03, *rec.CoreOrderFields.LimitPrice)
	assert.Contains(t, rec.Explanations, "Order type: Limit")
	assert.Contains(t, rec.Explanations, "Limit: bid/ask band")
}

func TestPipelineImpactSensitiveThinBook(t *testing.T) {
	data := testDataset()
	p := NewPipeline(DefaultConfig(), zerolog.Nop())
	req := domain.OrderRequest{
		ClientID:    "CLT004",
		Symbol:      "KMDA",
		OrderSize:   90_000,
		Direction:   "Buy",
		TimeToClose: 240,
		Notes:       "minimize market impact",
	}

	rec := p.Run(req, data, testNow)

	assert.Equal(t, domain.AlgoICEBERG, rec.CoreOrderFields.AlgoType)
	assert.Equal(t, "Limit", rec.CoreOrderFields.OrderType)
	require.NotNil(t, rec.CoreOrderFields.LimitPrice)
	assert.Equal(t, 14.95, *rec.CoreOrderFields.LimitPrice)

	params := rec.AlgoParameters
	require.NotNil(t, params.DisplayQuantity)
	assert.Equal(t, 6300, *params.DisplayQuantity)
	require.NotNil(t, params.MinClipSize)
	require.NotNil(t, params.MaxClipSize)
	assert.Equal(t, 450, *params.MinClipSize)
	assert.Equal(t, 1800, *params.MaxClipSize)
	assert.Equal(t, "Low", params.AggressionLevel)

	assert.Contains(t, rec.Explanations, "Order type: Limit (impact-sensitive, thin liquidity)")
	assert.Contains(t, rec.Explanations, "Low liquidity favors ICEBERG to minimize market impact")
}
